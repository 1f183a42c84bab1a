package server

import (
	"context"
	"encoding/binary"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"golang.org/x/net/websocket"
)

// frameHeaderSize is the size of the width, height and samples header of a live frame
const frameHeaderSize = 12

// LiveError is sent as a text frame when a live render cannot continue
type LiveError struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// handleLive streams the raw packed pixel buffer after every pass.
//
// Each binary frame starts with the little-endian uint32 width, height and
// samples per pixel, followed by one little-endian uint32 0x00RRGGBB per pixel
// with the top row first.
func (s *Server) handleLive(conn *websocket.Conn) {
	defer conn.Close()
	rendersStarted.WithLabelValues(transportWebsocket).Inc()

	ctx, cancel := context.WithCancel(conn.Request().Context())
	defer cancel()

	// Any client message or a closed connection stops the render
	go func() {
		defer cancel()
		var msg []byte
		websocket.Message.Receive(conn, &msg)
	}()

	req, err := s.parseRenderRequest(conn.Request().URL.Query())
	if err != nil {
		s.sendLiveError(conn, err)
		return
	}

	pipeline, err := s.startRender(ctx, req)
	if err != nil {
		s.sendLiveError(conn, err)
		return
	}

	d := pipeline.Definition
	logger := NewWebLogger(pipeline.ID, nil)
	logger.Printf("Streaming %s at %dx%d over websocket", d.Name, d.Width, d.Height)

	for result := range pipeline.Passes {
		frame := encodeFrame(result.Buffer, d.Width, d.Height, int(result.Stats.AverageSamples))
		if err := websocket.Message.Send(conn, frame); err != nil {
			logs.WithTag("render_id", pipeline.ID).Debug(err)
			cancel()
			break
		}
		liveBytesSent.Add(float64(len(frame)))
	}

	if err := <-pipeline.Errors; err != nil && ctx.Err() == nil {
		s.sendLiveError(conn, err)
	}
}

func (s *Server) sendLiveError(conn *websocket.Conn, err error) {
	renderErrors.WithLabelValues(transportWebsocket, errors.Type(err)).Inc()
	websocket.JSON.Send(conn, LiveError{
		Error: err.Error(),
		Type:  errors.Type(err),
	})
}

// encodeFrame packs a pixel buffer behind its frame header
func encodeFrame(buffer []uint32, width, height, samples int) []byte {
	frame := make([]byte, frameHeaderSize+4*len(buffer))
	binary.LittleEndian.PutUint32(frame[0:], uint32(width))
	binary.LittleEndian.PutUint32(frame[4:], uint32(height))
	binary.LittleEndian.PutUint32(frame[8:], uint32(samples))

	for i, px := range buffer {
		binary.LittleEndian.PutUint32(frame[frameHeaderSize+4*i:], px)
	}
	return frame
}
