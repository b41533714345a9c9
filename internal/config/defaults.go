package config

const (
	defaultConfigPath           = "~/.config/puppetmask/config.toml"
	defaultBucketDir            = "~/.local/share/puppetmask/bucket"
	defaultLogDir               = "~/.local/share/puppetmask/logs"
	defaultCacheDir             = "~/.cache/puppetmask"
	defaultAPIBind              = "127.0.0.1:7491"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultSeekSeconds          = 10.0
	defaultFrameTimeoutSeconds  = 60
	defaultMinPointDistance     = 5.0
	defaultCloseDistance        = 20.0
	defaultSimplifyTolerance    = 5.0
	defaultMinRadius            = 10.0
	defaultMoveStep             = 5.0
	defaultRadiusStep           = 5.0
	defaultScaleStep            = 0.05
	defaultSnapDistance         = 10.0
	defaultSampleStep           = 10
	defaultMinBoundaryPoints    = 25
	defaultMinAreaFraction      = 0.01
	defaultBoundarySampleStep   = 20
	defaultMaskObject           = "mask.png"
	defaultCoalesceGraceSeconds = 2
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	apiTokenEnv                 = "PUPPETMASK_API_TOKEN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BucketDir: defaultBucketDir,
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir,
			APIBind:   defaultAPIBind,
		},
		Frames: Frames{
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			SeekSeconds:    defaultSeekSeconds,
			TimeoutSeconds: defaultFrameTimeoutSeconds,
			CacheEnabled:   true,
		},
		Editor: Editor{
			MinPointDistance:  defaultMinPointDistance,
			CloseDistance:     defaultCloseDistance,
			SimplifyTolerance: defaultSimplifyTolerance,
			MinRadius:         defaultMinRadius,
			MoveStep:          defaultMoveStep,
			RadiusStep:        defaultRadiusStep,
			ScaleStep:         defaultScaleStep,
			SnapDistance:      defaultSnapDistance,
		},
		Reconstruct: Reconstruct{
			SampleStep:         defaultSampleStep,
			MinBoundaryPoints:  defaultMinBoundaryPoints,
			MinAreaFraction:    defaultMinAreaFraction,
			BoundarySampleStep: defaultBoundarySampleStep,
		},
		Storage: Storage{
			MaskObject:           defaultMaskObject,
			CoalesceGraceSeconds: defaultCoalesceGraceSeconds,
			HistoryEnabled:       true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
