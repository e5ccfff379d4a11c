// Package stream is the websocket ingress for the suppression stage: binary
// messages carry one render quantum of float32 LE mono samples, text messages
// carry tagged JSON control frames. Each connection gets its own processor
// and drives its render loop from the read pump.
package stream

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/soniqlabs/denoise-gateway/internal/audio"
	"github.com/soniqlabs/denoise-gateway/internal/config"
	"github.com/soniqlabs/denoise-gateway/internal/observability"
	"github.com/soniqlabs/denoise-gateway/internal/suppress"
)

// ControlFrame is one tagged JSON control message from the client.
type ControlFrame struct {
	Event string `json:"event"` // "init", "destroy" or "setParameter"

	// Payload is the base64-encoded engine binary for an init event. When
	// empty the server's preloaded engine binary is used.
	Payload string `json:"payload,omitempty"`

	// Name and Value carry a setParameter update.
	Name  string  `json:"name,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// Session holds the state of a single audio stream connection.
type Session struct {
	conn     *websocket.Conn
	proc     *suppress.Processor
	logger   zerolog.Logger
	streamID string

	// Server-side default engine binary, used by init frames without payload.
	engineBinary []byte
}

// HandleAudioWS is the entry point for audio stream connections.
func HandleAudioWS(cfg *config.Config, engineBinary []byte) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// The gateway sits behind the host's own ingress; origin policy
			// is enforced there.
			return true
		},
		ReadBufferSize:  cfg.WSReadBufferSize,
		WriteBufferSize: cfg.WSWriteBufferSize,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			lg := observability.GetLogger()
			lg.Error().Err(err).Msg("Failed to upgrade connection to WebSocket")
			return
		}

		streamID := observability.NewStreamID()
		logger := observability.WithStreamID(streamID)

		gate := audio.GateConfig{
			SilenceThreshold: cfg.SilenceThreshold,
			MaxSilenceFrames: cfg.MaxSilenceFrames,
		}

		session := &Session{
			conn:         conn,
			proc:         suppress.New(logger, gate, cfg.ControlQueueSize),
			logger:       logger,
			streamID:     streamID,
			engineBinary: engineBinary,
		}

		observability.RecordStreamStart()
		logger.Info().Str("remote", r.RemoteAddr).Msg("Audio stream opened")

		session.run()
	}
}

// run is the session's read pump and render driver: every binary message is
// one quantum pushed through the processor and echoed back denoised. It runs
// until the client disconnects or the processor reports destroyed.
func (s *Session) run() {
	defer func() {
		// The processor holds the engine; make sure a dropped connection
		// releases it even when the client never sent destroy.
		s.proc.Send(suppress.Command{Type: suppress.CmdDestroy})
		s.proc.Render(nil, nil)
		s.conn.Close()
		observability.RecordStreamEnd()
		s.logger.Info().Msg("Audio stream closed")
	}()

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn().Err(err).Msg("Stream read error")
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if !s.handleQuantum(data) {
				return
			}
		case websocket.TextMessage:
			s.handleControl(data)
		}
	}
}

// handleQuantum renders one quantum and writes the denoised result back.
// Returns false once the processor is destroyed.
func (s *Session) handleQuantum(data []byte) bool {
	samples := samplesFromBytes(data)
	observability.RecordAudioSamples("in", len(samples))

	inputs := [][][]float32{{samples}}
	out := make([]float32, len(samples))
	outputs := [][][]float32{{out}}

	if !s.proc.Render(inputs, outputs) {
		s.logger.Info().Msg("Processor destroyed, ending stream")
		return false
	}

	if err := s.conn.WriteMessage(websocket.BinaryMessage, bytesFromSamples(out)); err != nil {
		s.logger.Warn().Err(err).Msg("Stream write error")
		return false
	}
	observability.RecordAudioSamples("out", len(out))
	return true
}

// handleControl decodes one tagged control frame and forwards it to the
// processor's intake. Unknown events are logged and ignored.
func (s *Session) handleControl(data []byte) {
	var frame ControlFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.logger.Warn().Err(err).Msg("Malformed control frame")
		return
	}

	switch frame.Event {
	case "init":
		binary := s.engineBinary
		if frame.Payload != "" {
			decoded, err := base64.StdEncoding.DecodeString(frame.Payload)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Malformed init payload")
				return
			}
			binary = decoded
		}
		if len(binary) == 0 {
			s.logger.Warn().Msg("Init without engine binary and no server default configured")
			return
		}
		s.proc.Send(suppress.Command{Type: suppress.CmdInit, Binary: binary})
	case "destroy":
		s.proc.Send(suppress.Command{Type: suppress.CmdDestroy})
	case "setParameter":
		s.proc.Send(suppress.Command{Type: suppress.CmdSetParameter, Name: frame.Name, Value: frame.Value})
	default:
		s.logger.Warn().Str("event", frame.Event).Msg("Ignoring unknown control event")
	}
}

// samplesFromBytes decodes little-endian float32 samples. A trailing partial
// sample is dropped.
func samplesFromBytes(data []byte) []float32 {
	samples := make([]float32, len(data)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}

// bytesFromSamples encodes samples as little-endian float32 bytes.
func bytesFromSamples(samples []float32) []byte {
	data := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	return data
}
