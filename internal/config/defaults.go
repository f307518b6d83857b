package config

const (
	defaultConfigPath       = "~/.config/garimpeiro/config.toml"
	defaultDataDir          = "~/.local/share/garimpeiro"
	defaultLogDir           = "~/.local/share/garimpeiro/logs"
	defaultExportDir        = "~/garimpeiro"
	defaultHeadBytes        = 45000
	defaultMaxDepth         = 25
	defaultMaxEntryBytes    = 64 << 20
	defaultSkipFolder       = "__MACOSX"
	defaultKeyHeader        = "Chave de Acesso"
	defaultStatusHeader     = "Situação"
	defaultKeyIndex         = 0
	defaultStatusIndex      = 5
	defaultCancelMarker     = "CANCEL"
	defaultReleaseEvery     = 500
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30

	taxpayerEnv = "GARIMPEIRO_CNPJ"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		Classifier: Classifier{
			HeadBytes: defaultHeadBytes,
		},
		Unpacker: Unpacker{
			MaxDepth:      defaultMaxDepth,
			MaxEntryBytes: defaultMaxEntryBytes,
			SkipFolders:   []string{defaultSkipFolder},
		},
		Ledger: Ledger{
			KeyHeader:    defaultKeyHeader,
			StatusHeader: defaultStatusHeader,
			KeyIndex:     defaultKeyIndex,
			StatusIndex:  defaultStatusIndex,
			CancelMarker: defaultCancelMarker,
		},
		Ingest: Ingest{
			ReleaseEvery: defaultReleaseEvery,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
