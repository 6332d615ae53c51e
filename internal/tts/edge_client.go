package tts

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	edgeWSURL          = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	edgeTrustedToken   = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	edgeOutputFormat   = "raw-24khz-16bit-mono-pcm"
	edgeSampleRate     = 24000
	edgeSynthesisLimit = 60 * time.Second // Per-utterance wall clock cap
)

// EdgeClient synthesizes speech over the Edge neural TTS websocket endpoint.
// Each Synthesize call opens its own connection; the protocol is one
// utterance per request, so calls are independent and safe to run
// concurrently.
type EdgeClient struct {
	wsURL  string
	dialer *websocket.Dialer
}

// NewEdgeClient creates an Edge TTS client
func NewEdgeClient() *EdgeClient {
	return &EdgeClient{
		wsURL: edgeWSURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
			ReadBufferSize:   8192,
			WriteBufferSize:  8192,
		},
	}
}

// speechConfig is the first message of every synthesis session
type speechConfig struct {
	Context struct {
		Synthesis struct {
			Audio struct {
				MetadataOptions struct {
					SentenceBoundaryEnabled bool `json:"sentenceBoundaryEnabled"`
					WordBoundaryEnabled     bool `json:"wordBoundaryEnabled"`
				} `json:"metadataoptions"`
				OutputFormat string `json:"outputFormat"`
			} `json:"audio"`
		} `json:"synthesis"`
	} `json:"context"`
}

// Synthesize converts one utterance into raw PCM audio
func (c *EdgeClient) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &SynthesisError{TurnIndex: -1, Voice: voice.Name, Cause: fmt.Errorf("empty utterance")}
	}

	ctx, cancel := context.WithTimeout(ctx, edgeSynthesisLimit)
	defer cancel()

	requestID := strings.ReplaceAll(uuid.New().String(), "-", "")

	header := http.Header{}
	header.Set("Origin", "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold")
	header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	dialURL := fmt.Sprintf("%s?TrustedClientToken=%s&ConnectionId=%s", c.wsURL, edgeTrustedToken, requestID)

	conn, resp, err := c.dialer.DialContext(ctx, dialURL, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, &SynthesisError{TurnIndex: -1, Voice: voice.Name, Cause: fmt.Errorf("websocket dial failed (status %d): %w", status, err)}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	if err := c.sendConfig(conn); err != nil {
		return nil, &SynthesisError{TurnIndex: -1, Voice: voice.Name, Cause: err}
	}

	if err := c.sendSSML(conn, requestID, text, voice); err != nil {
		return nil, &SynthesisError{TurnIndex: -1, Voice: voice.Name, Cause: err}
	}

	audio, err := c.readAudio(conn)
	if err != nil {
		return nil, &SynthesisError{TurnIndex: -1, Voice: voice.Name, Cause: err}
	}

	if len(audio) == 0 {
		return nil, &SynthesisError{TurnIndex: -1, Voice: voice.Name, Cause: fmt.Errorf("provider returned no audio")}
	}

	return audio, nil
}

func (c *EdgeClient) sendConfig(conn *websocket.Conn) error {
	var cfg speechConfig
	cfg.Context.Synthesis.Audio.OutputFormat = edgeOutputFormat

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal speech config: %w", err)
	}

	msg := fmt.Sprintf(
		"X-Timestamp:%s\r\nContent-Type:application/json; charset=utf-8\r\nPath:speech.config\r\n\r\n%s",
		edgeTimestamp(), cfgJSON,
	)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send speech config: %w", err)
	}

	return nil
}

func (c *EdgeClient) sendSSML(conn *websocket.Conn, requestID, text string, voice Voice) error {
	ssml := BuildSSML(text, voice)

	msg := fmt.Sprintf(
		"X-RequestId:%s\r\nContent-Type:application/ssml+xml\r\nX-Timestamp:%s\r\nPath:ssml\r\n\r\n%s",
		requestID, edgeTimestamp(), ssml,
	)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send ssml: %w", err)
	}

	return nil
}

// readAudio collects binary audio frames until the provider signals turn.end
func (c *EdgeClient) readAudio(conn *websocket.Conn) ([]byte, error) {
	var audio []byte

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read message: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if strings.Contains(string(data), "Path:turn.end") {
				return audio, nil
			}

		case websocket.BinaryMessage:
			payload, err := ParseBinaryFrame(data)
			if err != nil {
				return nil, err
			}
			audio = append(audio, payload...)
		}
	}
}

// ParseBinaryFrame extracts the audio payload from one binary protocol frame.
// Frame layout: 2-byte big-endian header length, header text, payload.
// Frames whose header is not Path:audio carry no audio and yield nil.
func ParseBinaryFrame(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("binary frame too short (%d bytes)", len(data))
	}

	headerLen := int(binary.BigEndian.Uint16(data[:2]))
	if 2+headerLen > len(data) {
		return nil, fmt.Errorf("binary frame header length %d exceeds frame size %d", headerLen, len(data))
	}

	header := string(data[2 : 2+headerLen])
	if !strings.Contains(header, "Path:audio") {
		return nil, nil
	}

	return data[2+headerLen:], nil
}

// BuildSSML renders the utterance with voice and prosody markup
func BuildSSML(text string, voice Voice) string {
	return fmt.Sprintf(
		"<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-IN'>"+
			"<voice name='%s'><prosody rate='%s' pitch='%s'>%s</prosody></voice></speak>",
		voice.Name, voice.Rate(), voice.Pitch(), escapeXML(text),
	)
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}

// edgeTimestamp renders the header timestamp format the endpoint expects
func edgeTimestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05") + " GMT+0000 (Coordinated Universal Time)"
}

// SampleRate returns the PCM sample rate of synthesized audio
func (c *EdgeClient) SampleRate() int {
	return edgeSampleRate
}

// Close releases client resources. Connections are per-call, so this is a
// no-op kept for the Synthesizer interface.
func (c *EdgeClient) Close() error {
	return nil
}
