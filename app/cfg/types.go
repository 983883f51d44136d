package cfg

type Cfg struct {
	// Pipeline configuration
	OutlineFile   string
	OutputDir     string
	Category      string
	MaxConcurrent int
	FetchTimeout  int
	OverridesFile string

	// Run history
	HistoryDB   string
	ShowHistory int

	// Summarization collaborator
	Summarize     bool
	OpenAIAPIKey  string
	OpenAIBaseURL string
	SummaryModel  string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
