package ui

// Config contains TUI-specific configuration.
type Config struct {
	EnableMouse bool
	ShowHelp    bool

	// Title links to the source page in terminals that support OSC 8.
	Hyperlinks bool `env:"LEXIO_HYPERLINKS" envDefault:"true"`

	// For debugging the UI
	DetailedStatus bool `env:"LEXIO_DETAILED_STATUS"`
	QueueWidth     int  `env:"LEXIO_QUEUE_WIDTH"     envDefault:"34"`
}
