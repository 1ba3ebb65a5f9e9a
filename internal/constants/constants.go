package constants

const (
	Version        = `0.1.0`
	ConfigFile     = `cfg`
	ConfigFileType = `yaml`
	ConfigDir      = `/.mdview/`
	LogFile        = `debug.log`
	EnvPrefix      = `MDVIEW`

	// DetailTarget is the display target the formatter renders records into.
	DetailTarget = `#detail`
)
