package log

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/natefinch/lumberjack.v2"
)

type FileAppenderOpt struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AddFileAppender appends a size-rotated file writer to the chain.
func (m *MultiWriter) AddFileAppender(options map[string]interface{}) error {
	var opt FileAppenderOpt
	if err := mapstructure.Decode(options, &opt); err != nil {
		return fmt.Errorf("log: file appender options: %w", err)
	}
	if opt.Filename == "" {
		return fmt.Errorf("log: file appender requires a filename")
	}
	m.Add(&lumberjack.Logger{
		Filename:   opt.Filename,
		MaxSize:    opt.MaxSize,    // megabytes
		MaxBackups: opt.MaxBackups, // number of backups
		MaxAge:     opt.MaxAge,     // days
		Compress:   opt.Compress,   // compress the backups
	})
	return nil
}
