// package models defines the data model for the listen import tool
package models
