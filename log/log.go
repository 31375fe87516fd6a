package log

import (
	"io"
	"os"

	"github.com/grantledger/grant-node/config"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"
)

// NewLogger builds the node logger from the log_* options of cfg.
func NewLogger(cfg *config.Config) (log.Logger, error) {
	dest, err := destination(cfg.LogPath)
	if err != nil {
		return nil, err
	}

	return newLogger(dest, cfg.LogFormat, cfg.LogLevel)
}

func newLogger(dest io.Writer, format, level string) (log.Logger, error) {
	var l log.Logger

	switch format {
	case config.LogFormatJSON:
		l = log.NewTMJSONLogger(log.NewSyncWriter(dest))
	case config.LogFormatPlain:
		l = log.NewTMLogger(log.NewSyncWriter(dest))
	default:
		return nil, errors.Errorf("unsupported log format %q", format)
	}

	l, err := flags.ParseLogLevel(level, l, config.DefaultLogLevel())
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse log level")
	}

	return l, nil
}

func destination(path string) (io.Writer, error) {
	if path == "" || path == "stdout" {
		return os.Stdout, nil
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file %s", path)
	}

	return file, nil
}
