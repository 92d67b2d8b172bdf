package model

// PipelineState is the progress of one URL through the download pipeline
type PipelineState string

const (
	StateURLGiven        PipelineState = "UrlGiven"
	StateIDExtracted     PipelineState = "IdExtracted"
	StateMetadataFetched PipelineState = "MetadataFetched"
	StateOptionsBuilt    PipelineState = "OptionsBuilt"
	StateOptionSelected  PipelineState = "OptionSelected"
	StateDownloading     PipelineState = "Downloading"
	StateCompleted       PipelineState = "Completed"
	StateFailed          PipelineState = "Failed"
)

// String returns the string representation of PipelineState
func (s PipelineState) String() string {
	return string(s)
}

// IsTerminal returns true once the pipeline has completed or failed
func (s PipelineState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}
