package contracts

import (
	"errors"
	"fmt"
)

// Structural failures. Data-quality problems never produce an error;
// they are coerced to null or placeholder values during derivation.
var (
	// ErrRemoteNotFound means the remote readme, folder or file does not exist
	ErrRemoteNotFound = errors.New("remote file not found")

	// ErrLinkExtraction means the readme carried no usable data-drop link
	ErrLinkExtraction = errors.New("failed to extract data-drop link")

	// ErrInvalidArgument means a filter call was under-specified
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBucketMismatch means two series cannot be joined on the same bucket keys
	ErrBucketMismatch = errors.New("bucket frequency or alignment mismatch")

	// ErrNoSourceFiles means no local file matched a source pattern
	ErrNoSourceFiles = errors.New("no source files matched")
)

// JobError wraps the failure of one chart job with the job's name.
type JobError struct {
	Job string
	Err error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s: %v", e.Job, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// RunStage names a step of a tracker run for error reporting
type RunStage string

const (
	RunStageDownload RunStage = "download"
	RunStagePrepare  RunStage = "prepare"
	RunStagePlot     RunStage = "plot"
	RunStagePublish  RunStage = "publish"
)

// StageError reports which step of a run failed.
type StageError struct {
	Stage RunStage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
