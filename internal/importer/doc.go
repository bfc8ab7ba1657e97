// package importer implements the resumable CSV → ListenBrainz submission pipeline.
//
// The core abstraction is ImportEngine, which orchestrates parsing, batching,
// submission, and checkpointing across dry-run and submit modes. Operations
// emit progress updates via channels for non-blocking status reporting to
// CLI/UI layers. Submission is strictly sequential: progress checkpoints
// assume the confirmed listens form a true prefix of the source file.
package importer
