package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/ai"
	"go.uber.org/zap"
)

var (
	// ErrNoAudio is returned when a transcription request has no chunks.
	ErrNoAudio = errors.New("audio chunks are required")
	// ErrNoTranscription is returned when no chunk produced any text.
	ErrNoTranscription = errors.New("no transcription produced, the audio may be empty or unclear")
	// ErrTranscriptRequired is returned when a summary is requested for nothing.
	ErrTranscriptRequired = errors.New("transcript is required")
	// ErrEmptySummary is returned when the model returned no summary.
	ErrEmptySummary = errors.New("failed to generate summary")
)

const summaryPrompt = `You are an expert at summarizing voice notes and ideas.
Create a clear, concise summary that:
1. Captures the main points and key ideas
2. Identifies any action items or next steps
3. Organizes the information in a readable format
4. Keeps the summary brief but comprehensive

Format your response with clear sections using markdown.`

// Transcriber turns one audio clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Transcription is the combined result of transcribing a recording.
type Transcription struct {
	Text            string `json:"transcription"`
	ChunksProcessed int    `json:"chunksProcessed"`
	TotalChunks     int    `json:"totalChunks"`
}

// AssistService transcribes voice notes and summarises transcripts.
type AssistService struct {
	stt Transcriber
	llm ai.Completer
	log *zap.Logger
}

// NewAssistService constructs an AssistService.
func NewAssistService(stt Transcriber, llm ai.Completer, log *zap.Logger) *AssistService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssistService{stt: stt, llm: llm, log: log}
}

// Transcribe transcribes base64 audio chunks in order and joins the text.
// Chunks that fail to decode or transcribe are skipped.
func (s *AssistService) Transcribe(ctx context.Context, chunks []string) (*Transcription, error) {
	if len(chunks) == 0 {
		return nil, ErrNoAudio
	}

	var parts []string
	for i, chunk := range chunks {
		audio, err := decodeAudio(chunk)
		if err != nil {
			s.log.Warn("failed to decode audio chunk", zap.Int("chunk", i+1), zap.Error(err))
			continue
		}
		text, err := s.stt.Transcribe(ctx, audio)
		if err != nil {
			s.log.Warn("failed to transcribe audio chunk", zap.Int("chunk", i+1), zap.Error(err))
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}

	full := strings.TrimSpace(strings.Join(parts, " "))
	if full == "" {
		return nil, ErrNoTranscription
	}
	return &Transcription{Text: full, ChunksProcessed: len(parts), TotalChunks: len(chunks)}, nil
}

// decodeAudio accepts raw base64 or a data URL.
func decodeAudio(chunk string) ([]byte, error) {
	if strings.HasPrefix(chunk, "data:") {
		if i := strings.Index(chunk, ","); i >= 0 {
			chunk = chunk[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(chunk)
}

// Summarize asks the model for a markdown summary of a transcript.
func (s *AssistService) Summarize(ctx context.Context, transcript, title string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrTranscriptRequired
	}

	var user strings.Builder
	if title != "" {
		fmt.Fprintf(&user, "Title: %s\n\n", title)
	}
	fmt.Fprintf(&user, "Transcript:\n%s\n\nPlease summarize this voice note.", transcript)

	summary, err := s.llm.Complete(ctx, []ai.Message{
		{Role: "system", Content: summaryPrompt},
		{Role: "user", Content: user.String()},
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	if summary == "" {
		return "", ErrEmptySummary
	}
	return summary, nil
}
