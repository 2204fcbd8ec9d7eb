package sl

import "log/slog"

// Err returns an slog attribute for an error.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Module returns an slog attribute marking the originating module.
func Module(name string) slog.Attr {
	return slog.Attr{
		Key:   "module",
		Value: slog.StringValue(name),
	}
}

// Secret returns an slog attribute with the value masked down to its
// first and last characters, so keys and tokens never land in logs whole.
func Secret(key, value string) slog.Attr {
	masked := "empty"
	if n := len(value); n > 8 {
		masked = value[:4] + "..." + value[n-2:]
	} else if n > 0 {
		masked = "***"
	}
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(masked),
	}
}
