package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorlens/internal/domain"
	"tutorlens/internal/ports"
)

// uploadResult is the envelope data of /api/homework/upload.
type uploadResult struct {
	ProblemID string `json:"problemId"`
}

// CaptureController drives photo capture and gallery selection into one
// acquire-asset, upload, obtain-problem-id pipeline. Only one pipeline
// run is in flight at a time; a second entry while busy is a no-op.
type CaptureController struct {
	camera  ports.Camera
	gallery ports.Gallery
	api     API
	events  ports.EventSink
	log     *zap.Logger

	mu        sync.Mutex
	busy      bool
	state     domain.CaptureState
	flash     domain.FlashMode
	position  domain.DevicePosition
	asset     *domain.MediaAsset
	problemID string
}

func NewCaptureController(
	camera ports.Camera,
	gallery ports.Gallery,
	api API,
	events ports.EventSink,
	log *zap.Logger,
) *CaptureController {
	if log == nil {
		log = zap.NewNop()
	}
	return &CaptureController{
		camera:   camera,
		gallery:  gallery,
		api:      api,
		events:   events,
		log:      log,
		state:    domain.CaptureStateIdle,
		flash:    domain.FlashOff,
		position: domain.DeviceBack,
	}
}

// CapturePhoto takes a photo with the camera and runs the upload pipeline.
func (c *CaptureController) CapturePhoto(ctx context.Context) error {
	if !c.acquirePipeline(domain.CaptureReasonShutterPressed) {
		return nil
	}
	defer c.releasePipeline()

	cam, err := c.camera.Acquire(ctx)
	if err != nil {
		resErr := &ports.ResourceError{Resource: "camera", Err: err}
		c.fail(domain.CaptureReasonCaptureFailed, domain.ErrorCodeCamera, resErr.Error())
		return resErr
	}
	defer func() {
		if err := cam.Release(); err != nil {
			c.log.Warn("failed to release camera", zap.Error(err))
		}
	}()

	c.mu.Lock()
	opts := ports.CaptureOptions{Flash: c.flash, Position: c.position, Quality: "high"}
	c.mu.Unlock()

	localPath, err := cam.TakePhoto(ctx, opts)
	if err != nil {
		c.fail(domain.CaptureReasonCaptureFailed, domain.ErrorCodeCamera, "failed to take photo")
		return err
	}

	return c.uploadAndAnalyze(ctx, localPath)
}

// PickFromGallery selects an existing image and runs the same pipeline.
func (c *CaptureController) PickFromGallery(ctx context.Context) error {
	if !c.acquirePipeline(domain.CaptureReasonGalleryPicked) {
		return nil
	}
	defer c.releasePipeline()

	localPath, err := c.gallery.PickImage(ctx)
	if err != nil {
		c.fail(domain.CaptureReasonCaptureFailed, domain.ErrorCodeCamera, "failed to open image library")
		return err
	}
	if localPath == "" {
		// Selection cancelled by the user.
		c.setState(domain.CaptureStateIdle, domain.CaptureReasonPickCancelled)
		return nil
	}

	return c.uploadAndAnalyze(ctx, localPath)
}

// uploadAndAnalyze uploads the asset and records the resulting problem id.
// The asset's upload state moves strictly forward: Uploading then Done or
// Failed, never back.
func (c *CaptureController) uploadAndAnalyze(ctx context.Context, localPath string) error {
	asset := &domain.MediaAsset{
		ID:          uuid.NewString(),
		LocalPath:   localPath,
		UploadState: domain.UploadStateUploading,
	}

	c.mu.Lock()
	c.asset = asset
	c.state = domain.CaptureStateUploading
	c.mu.Unlock()
	c.events.CaptureStateChanged(domain.CaptureStateUploading, domain.CaptureReasonUploadStarted)

	var result uploadResult
	if err := c.api.Upload(ctx, "/api/homework/upload", "image", localPath, &result); err != nil {
		c.mu.Lock()
		asset.UploadState = domain.UploadStateFailed
		c.state = domain.CaptureStateFailed
		c.mu.Unlock()
		c.events.CaptureStateChanged(domain.CaptureStateFailed, domain.CaptureReasonUploadFailed)
		c.events.Notice(classify(err), err.Error())
		c.log.Warn("photo upload failed", zap.String("asset", asset.ID), zap.Error(err))
		return err
	}

	c.mu.Lock()
	asset.UploadState = domain.UploadStateDone
	asset.RemoteProblemID = result.ProblemID
	c.problemID = result.ProblemID
	c.state = domain.CaptureStateAnalyzed
	c.mu.Unlock()

	c.log.Info("photo analyzed", zap.String("problemId", result.ProblemID))
	c.events.CaptureStateChanged(domain.CaptureStateAnalyzed, domain.CaptureReasonAnalysisReady)
	return nil
}

// ToggleFlash cycles the flash mode. Local state only, no capture.
func (c *CaptureController) ToggleFlash() domain.FlashMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flash = domain.NextFlashMode(c.flash)
	return c.flash
}

// SwitchCamera flips between the front and back device. Local state only.
func (c *CaptureController) SwitchCamera() domain.DevicePosition {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = domain.TogglePosition(c.position)
	return c.position
}

// ProblemID returns the analysis result of the last completed pipeline.
func (c *CaptureController) ProblemID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.problemID, c.problemID != ""
}

// State returns the current pipeline state.
func (c *CaptureController) State() domain.CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Asset returns a snapshot of the most recent media asset.
func (c *CaptureController) Asset() (domain.MediaAsset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.asset == nil {
		return domain.MediaAsset{}, false
	}
	return *c.asset, true
}

func (c *CaptureController) acquirePipeline(reason domain.CaptureStateReason) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		c.log.Debug("capture pipeline busy, ignoring entry", zap.String("reason", string(reason)))
		c.events.CaptureStateChanged(c.state, domain.CaptureReasonPipelineBusy)
		return false
	}
	c.busy = true
	c.state = domain.CaptureStateCapturing
	c.events.CaptureStateChanged(domain.CaptureStateCapturing, reason)
	return true
}

func (c *CaptureController) releasePipeline() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *CaptureController) setState(state domain.CaptureState, reason domain.CaptureStateReason) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.events.CaptureStateChanged(state, reason)
}

func (c *CaptureController) fail(reason domain.CaptureStateReason, code domain.ErrorCode, detail string) {
	c.setState(domain.CaptureStateFailed, reason)
	c.events.Notice(code, detail)
}
