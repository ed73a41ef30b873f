package constants

// JobStatus is the canonical status for rows in extraction_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOK      JobStatus = "OK"      // extracted, normalized and validated
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure (extraction error)
)

// Method identifies which backend produced a raw extraction.
type Method string

const (
	MethodPattern     Method = "pattern"
	MethodModel       Method = "model"
	MethodGroundTruth Method = "ground_truth"
)
