package cfg

type Cfg struct {
	// Content source configuration
	Source     string
	ContentDir string
	FeedURL    string

	// Build configuration
	OutputDir   string
	DBPath      string
	WorkerCount int
	FeedTimeout int
	Fallback    string

	// Server configuration
	Mode         string
	Port         string
	BaseUrl      string
	APIAccessKey string
	Dev          bool

	// Application metadata
	Locale    string
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// IsLazyFallback reports whether unknown ids may be generated on demand.
func (c *Cfg) IsLazyFallback() bool {
	return c.Fallback == "lazy"
}
