package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	MaxFileSize      = 5 * 1024 * 1024 // 5MB
	AllowedExtension = ".wav"
	SampleRateHertz  = 16000
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrTooLarge          = errors.New("audio file too large")
	ErrNoSpeech          = errors.New("no speech recognized")
)

// Recognizer turns mono 16kHz LINEAR16 audio into text.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, language string) (string, error)
}

// Converter rewrites inputPath into a mono 16kHz PCM wav at outputPath.
type Converter func(ctx context.Context, inputPath, outputPath string) error

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	var header waveHeader
	if len(data) < binary.Size(header) {
		return nil, errors.New("invalid WAV header length")
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, errors.New("missing RIFF/WAVE tags")
	}
	return &header, nil
}

// recognizable reports whether the audio can go to the recognizer as is.
func (h *waveHeader) recognizable() bool {
	return h.AudioFormat == 1 && h.NumChannels == 1 &&
		h.SampleRate == SampleRateHertz && h.BitsPerSample == 16
}

// FFmpegConvert shells out to ffmpeg.
func FFmpegConvert(ctx context.Context, inputPath, outputPath string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in system PATH: %v", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", fmt.Sprint(SampleRateHertz),
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}
	return nil
}

// Transcriber validates an uploaded voice message and returns its text.
type Transcriber struct {
	recognizer Recognizer
	convert    Converter
	language   string
	logger     *zap.Logger
}

func NewTranscriber(r Recognizer, convert Converter, language string, logger *zap.Logger) *Transcriber {
	if convert == nil {
		convert = FFmpegConvert
	}
	if language == "" {
		language = "tr-TR"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcriber{recognizer: r, convert: convert, language: language, logger: logger}
}

// Transcribe reads at most MaxFileSize bytes from audio.
func (t *Transcriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != AllowedExtension {
		return "", fmt.Errorf("%w: expected %s, got %q", ErrUnsupportedFormat, AllowedExtension, ext)
	}

	data, err := io.ReadAll(io.LimitReader(audio, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", ErrTooLarge
	}

	header, err := parseWaveHeader(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	if !header.recognizable() {
		t.logger.Debug("Converting audio",
			zap.Uint16("channels", header.NumChannels),
			zap.Uint32("sampleRate", header.SampleRate),
			zap.Uint16("bits", header.BitsPerSample))
		if data, err = t.reencode(ctx, data); err != nil {
			return "", err
		}
	}

	text, err := t.recognizer.Recognize(ctx, data, t.language)
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

func (t *Transcriber) reencode(ctx context.Context, data []byte) ([]byte, error) {
	tempInput, err := os.CreateTemp("", "audio-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempInput.Name())
	defer tempInput.Close()

	if _, err := tempInput.Write(data); err != nil {
		return nil, fmt.Errorf("failed to save audio file: %w", err)
	}

	tempOutput, err := os.CreateTemp("", "converted-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create output temp file: %w", err)
	}
	defer os.Remove(tempOutput.Name())
	tempOutput.Close()

	if err := t.convert(ctx, tempInput.Name(), tempOutput.Name()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return os.ReadFile(tempOutput.Name())
}
