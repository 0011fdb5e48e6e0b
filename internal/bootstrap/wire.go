package bootstrap

import (
	"go.uber.org/zap"

	"tutorlens/internal/audio"
	"tutorlens/internal/camera"
	"tutorlens/internal/config"
	"tutorlens/internal/gateway"
	"tutorlens/internal/logging"
	"tutorlens/internal/ports"
	"tutorlens/internal/session"
	"tutorlens/internal/storage"
	"tutorlens/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Config   config.Config
	Log      *zap.Logger
	Sessions *session.Store
	Gateway  *gateway.Gateway
	Capture  *usecase.CaptureController
	Audio    *usecase.AudioController
	Chat     *usecase.ChatSession
	Analysis *usecase.AnalysisController
	Mistakes *usecase.MistakeBook
	Profile  *usecase.Profile
}

// Build wires all client dependencies for the current runtime.
func Build(events ports.EventSink, gallery ports.Gallery) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return Services{}, err
	}

	store, err := storage.NewFileStore(cfg.Storage.Dir)
	if err != nil {
		return Services{}, err
	}

	sessions := session.NewStore(store, log.Named("session"))
	if err := sessions.Init(); err != nil {
		return Services{}, err
	}

	// Both 401 handling and an explicit logout clear the store; either way
	// the frontend is told to return to sign-in.
	sessions.OnInvalidate(events.SessionExpired)

	gw := gateway.New(cfg.API.BaseURL, cfg.API.Timeout, sessions, log.Named("gateway"))

	audioCtl := usecase.NewAudioController(
		audio.NewFFMPEGRecorder(audio.RecorderConfig{
			Command:     cfg.Audio.RecorderCommand,
			InputFormat: cfg.Audio.InputFormat,
			InputDevice: cfg.Audio.InputDevice,
		}),
		audio.NewFFPlayPlayer(audio.PlayerConfig{Command: cfg.Audio.PlayerCommand}),
		events,
		ports.RecordConfig{
			SampleRate:  cfg.Audio.SampleRate,
			Channels:    cfg.Audio.Channels,
			MaxDuration: cfg.Audio.MaxDuration,
		},
		log.Named("audio"),
	)

	return Services{
		Config:   cfg,
		Log:      log,
		Sessions: sessions,
		Gateway:  gw,
		Capture: usecase.NewCaptureController(
			camera.NewFFMPEGCamera(camera.Config{
				Command:     cfg.Camera.Command,
				InputFormat: cfg.Camera.InputFormat,
				BackDevice:  cfg.Camera.BackDevice,
				FrontDevice: cfg.Camera.FrontDevice,
			}),
			gallery,
			gw,
			events,
			log.Named("capture"),
		),
		Audio:    audioCtl,
		Chat:     usecase.NewChatSession(gw, audioCtl, events, log.Named("chat")),
		Analysis: usecase.NewAnalysisController(gw, audioCtl, events, log.Named("analysis")),
		Mistakes: usecase.NewMistakeBook(gw, log.Named("mistakes")),
		Profile:  usecase.NewProfile(gw, sessions, log.Named("profile")),
	}, nil
}
