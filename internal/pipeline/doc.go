// Package pipeline provides a framework for executing scan steps in sequence.
//
// A corpus root is processed through four stages: loading files, segmenting
// documents into sections, grouping duplicate sections, and analyzing the
// resulting groups. Each stage is implemented as a Step that receives the
// accumulated report and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for large corpora
//
// Loading and segmentation fan out across worker goroutines with errgroup;
// grouping is serialized because the key map is the only shared mutable
// structure. The pipeline supports both single-root scans and batch
// processing of multiple roots with bounded concurrency.
package pipeline
