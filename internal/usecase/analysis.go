package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"tutorlens/internal/domain"
	"tutorlens/internal/ports"
)

// AnalysisController loads one analyzed problem and drives the actions on
// the analysis view: regeneration, OCR correction, spoken answers, and
// saving to the mistake book.
type AnalysisController struct {
	api    API
	audio  *AudioController
	events ports.EventSink
	log    *zap.Logger

	mu      sync.Mutex
	problem *domain.Problem
}

func NewAnalysisController(api API, audio *AudioController, events ports.EventSink, log *zap.Logger) *AnalysisController {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalysisController{api: api, audio: audio, events: events, log: log}
}

// Load fetches the problem with its OCR text and answer.
func (c *AnalysisController) Load(ctx context.Context, problemID string) (domain.Problem, error) {
	var problem domain.Problem
	if err := c.api.Get(ctx, "/api/homework/problems/"+problemID, &problem); err != nil {
		return domain.Problem{}, err
	}

	c.mu.Lock()
	c.problem = &problem
	c.mu.Unlock()
	return problem, nil
}

// Regenerate recomputes the analysis server-side and replaces the held problem.
func (c *AnalysisController) Regenerate(ctx context.Context) (domain.Problem, error) {
	problem, ok := c.Problem()
	if !ok {
		return domain.Problem{}, ErrNoProblemLoaded
	}

	var updated domain.Problem
	if err := c.api.Post(ctx, "/api/homework/problems/"+problem.ID+"/regenerate", nil, &updated); err != nil {
		return domain.Problem{}, err
	}

	c.mu.Lock()
	c.problem = &updated
	c.mu.Unlock()
	return updated, nil
}

// UpdateOCRText corrects the recognized problem text. The fix patches the
// backing problem record, never a chat transcript.
func (c *AnalysisController) UpdateOCRText(ctx context.Context, text string) error {
	problem, ok := c.Problem()
	if !ok {
		return ErrNoProblemLoaded
	}

	body := map[string]string{"ocrText": text}
	if err := c.api.Put(ctx, "/api/homework/problems/"+problem.ID+"/ocr", body, nil); err != nil {
		return err
	}

	c.mu.Lock()
	if c.problem != nil {
		c.problem.OCRText = text
	}
	c.mu.Unlock()
	return nil
}

// SpeakAnswer synthesizes speech for the answer and plays it through the
// shared audio channel. Calling it while the answer is sounding stops
// playback instead.
func (c *AnalysisController) SpeakAnswer(ctx context.Context) error {
	problem, ok := c.Problem()
	if !ok {
		return ErrNoProblemLoaded
	}

	key := "tts:" + problem.ID
	if playing, ok := c.audio.PlayingMessageID(); ok && playing == key {
		c.audio.StopPlayback()
		return nil
	}

	body := map[string]string{"text": problem.Answer, "problemId": problem.ID}
	var generated struct {
		AudioURL string `json:"audioUrl"`
	}
	if err := c.api.Post(ctx, "/api/tts/generate", body, &generated); err != nil {
		c.events.Notice(classify(err), err.Error())
		return err
	}

	return c.audio.Play(ctx, key, generated.AudioURL)
}

// AddToMistakeBook saves the problem into the user's mistake collection.
func (c *AnalysisController) AddToMistakeBook(ctx context.Context) error {
	problem, ok := c.Problem()
	if !ok {
		return ErrNoProblemLoaded
	}

	body := map[string]string{"problemId": problem.ID, "subject": problem.Subject}
	return c.api.Post(ctx, "/api/mistake-book/problems", body, nil)
}

// Problem returns a snapshot of the loaded problem.
func (c *AnalysisController) Problem() (domain.Problem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.problem == nil {
		return domain.Problem{}, false
	}
	return *c.problem, true
}

// Close stops a spoken answer still sounding on teardown.
func (c *AnalysisController) Close() {
	c.audio.StopPlayback()
}
