package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorlens/internal/domain"
	"tutorlens/internal/gateway"
	"tutorlens/internal/ports"
)

const (
	welcomeText = "Hi! I'm your homework tutor. What would you like to know about this problem?"

	// Fixed fallback replies. Every text turn gets a reply in the
	// transcript, success or failure.
	apologyBusiness = "Sorry, I can't answer that right now. Please try again later."
	apologyNetwork  = "Network error. Please check your connection and try again."

	voicePlaceholder = "[voice message]"
)

// replyPayload is the envelope data of /api/chat/message and /api/chat/audio.
type replyPayload struct {
	Content  string `json:"content"`
	AudioURL string `json:"audioUrl"`
}

// ChatSession is the append-only conversation about one problem. Messages
// are immutable once appended and only ever added at the tail.
type ChatSession struct {
	api    API
	audio  *AudioController
	events ports.EventSink
	log    *zap.Logger

	mu        sync.Mutex
	problemID string
	title     string
	messages  []domain.ChatMessage
}

func NewChatSession(api API, audio *AudioController, events ports.EventSink, log *zap.Logger) *ChatSession {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatSession{api: api, audio: audio, events: events, log: log}
}

// Initialize fetches the problem context and seeds the welcome message.
// A fetch failure is non-fatal: the transcript stays empty and the user
// can still send messages.
func (c *ChatSession) Initialize(ctx context.Context, problemID string) {
	c.mu.Lock()
	c.problemID = problemID
	c.mu.Unlock()

	var problem domain.Problem
	if err := c.api.Get(ctx, "/api/homework/problems/"+problemID, &problem); err != nil {
		c.log.Warn("failed to initialize chat",
			zap.String("problemId", problemID),
			zap.Error(err))
		return
	}

	c.mu.Lock()
	c.title = truncateTitle(problem.OCRText)
	c.mu.Unlock()

	c.append(domain.ChatMessage{
		ID:        uuid.NewString(),
		Author:    domain.AuthorAssistant,
		Content:   welcomeText,
		CreatedAt: time.Now(),
	})
}

// SendText appends the user's message immediately, then asks the
// assistant and appends its reply. On any failure a fixed apology is
// appended instead, so the transcript always answers every user turn.
func (c *ChatSession) SendText(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	c.append(domain.ChatMessage{
		ID:        uuid.NewString(),
		Author:    domain.AuthorUser,
		Content:   content,
		CreatedAt: time.Now(),
	})

	body := map[string]string{"problemId": c.ProblemID(), "message": content}
	var reply replyPayload
	if err := c.api.Post(ctx, "/api/chat/message", body, &reply); err != nil {
		apology := apologyNetwork
		if gateway.IsBusiness(err) {
			apology = apologyBusiness
		}
		c.log.Warn("chat turn failed", zap.Error(err))
		c.append(domain.ChatMessage{
			ID:        uuid.NewString(),
			Author:    domain.AuthorAssistant,
			Content:   apology,
			CreatedAt: time.Now(),
		})
		return nil
	}

	c.append(domain.ChatMessage{
		ID:        uuid.NewString(),
		Author:    domain.AuthorAssistant,
		Content:   reply.Content,
		CreatedAt: time.Now(),
		AudioURL:  reply.AudioURL,
	})
	return nil
}

// SendAudio uploads a recorded file, then sends its remote reference for
// interpretation. On success a user placeholder and the reply are appended
// together at the tail; on failure the transcript is untouched and the
// error goes back to the caller for an out-of-band notice. The asymmetry
// with SendText is intentional: audio failures happen before the point
// where a user message would be committed.
func (c *ChatSession) SendAudio(ctx context.Context, localFilePath string) error {
	var uploaded struct {
		AudioURL string `json:"audioUrl"`
	}
	if err := c.api.Upload(ctx, "/api/upload/audio", "audio", localFilePath, &uploaded); err != nil {
		c.log.Warn("audio upload failed", zap.Error(err))
		return err
	}

	body := map[string]string{"problemId": c.ProblemID(), "audioUrl": uploaded.AudioURL}
	var reply replyPayload
	if err := c.api.Post(ctx, "/api/chat/audio", body, &reply); err != nil {
		c.log.Warn("audio turn failed", zap.Error(err))
		return err
	}

	now := time.Now()
	c.appendPair(
		domain.ChatMessage{
			ID:        uuid.NewString(),
			Author:    domain.AuthorUser,
			Content:   voicePlaceholder,
			CreatedAt: now,
		},
		domain.ChatMessage{
			ID:        uuid.NewString(),
			Author:    domain.AuthorAssistant,
			Content:   reply.Content,
			CreatedAt: now,
			AudioURL:  reply.AudioURL,
		},
	)
	return nil
}

// StartVoiceInput begins recording a voice turn. Active playback is
// stopped by the audio controller before the microphone opens.
func (c *ChatSession) StartVoiceInput(ctx context.Context) error {
	return c.audio.StartRecording(ctx)
}

// FinishVoiceInput stops recording and sends the captured audio as a turn.
// Failures surface as a notice, never as transcript entries.
func (c *ChatSession) FinishVoiceInput(ctx context.Context) error {
	localPath, err := c.audio.StopRecording(ctx)
	if err != nil {
		return err
	}
	if err := c.SendAudio(ctx, localPath); err != nil {
		c.events.Notice(classify(err), err.Error())
		return err
	}
	return nil
}

// PlayMessage toggles playback of a message's audio.
func (c *ChatSession) PlayMessage(ctx context.Context, messageID string) error {
	c.mu.Lock()
	var url string
	for i := range c.messages {
		if c.messages[i].ID == messageID {
			url = c.messages[i].AudioURL
			break
		}
	}
	c.mu.Unlock()

	if url == "" {
		return nil
	}
	return c.audio.Play(ctx, messageID, url)
}

// Messages returns a snapshot of the transcript in display order.
func (c *ChatSession) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// ProblemID returns the problem this conversation is about.
func (c *ChatSession) ProblemID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.problemID
}

// Title returns the short problem title shown above the transcript.
func (c *ChatSession) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// Close releases the audio hardware on page teardown.
func (c *ChatSession) Close() {
	c.audio.Close()
}

func (c *ChatSession) append(msg domain.ChatMessage) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	c.events.MessageAppended(msg)
}

// appendPair adds two messages adjacently so nothing interleaves between
// a voice turn and its reply.
func (c *ChatSession) appendPair(first domain.ChatMessage, second domain.ChatMessage) {
	c.mu.Lock()
	c.messages = append(c.messages, first, second)
	c.mu.Unlock()
	c.events.MessageAppended(first)
	c.events.MessageAppended(second)
}

func truncateTitle(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes) + "..."
}
