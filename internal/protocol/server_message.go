package protocol

import (
	"fmt"

	"github.com/goccy/go-json"
)

const (
	TypeInit       = "init"
	TypePointCloud = "point_cloud"
	TypeError      = "error"
)

type ServerMessage interface {
	MessageType() string
}

type Init struct {
	Type        string `json:"type"`
	TotalFrames int    `json:"total_frames"`
	ShowAxes    bool   `json:"show_axes"`
	ShowRings   bool   `json:"show_rings"`
}

func NewInit(totalFrames int, showAxes, showRings bool) *Init {
	return &Init{Type: TypeInit, TotalFrames: totalFrames, ShowAxes: showAxes, ShowRings: showRings}
}

func (*Init) MessageType() string { return TypeInit }

// PointCloud carries one frame. Points and Colors must be non-nil so empty
// frames encode as [] rather than null.
type PointCloud struct {
	Type     string       `json:"type"`
	FrameIdx int          `json:"frame_idx"`
	Points   [][3]float64 `json:"points"`
	Colors   [][3]float64 `json:"colors"`
}

func NewPointCloud(frameIdx int, points, colors [][3]float64) *PointCloud {
	if points == nil {
		points = [][3]float64{}
	}
	if colors == nil {
		colors = [][3]float64{}
	}
	return &PointCloud{Type: TypePointCloud, FrameIdx: frameIdx, Points: points, Colors: colors}
}

func (*PointCloud) MessageType() string { return TypePointCloud }

type ErrorReply struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Message string `json:"error"`
}

func NewErrorReply(command, message string) *ErrorReply {
	return &ErrorReply{Type: TypeError, Command: command, Message: message}
}

func (*ErrorReply) MessageType() string { return TypeError }

func Encode(m ServerMessage) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	return b, nil
}

// DecodeServerMessage is the client-side counterpart of Encode.
func DecodeServerMessage(b []byte) (ServerMessage, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, err
	}

	var msg ServerMessage
	switch head.Type {
	case TypeInit:
		msg = &Init{}
	case TypePointCloud:
		msg = &PointCloud{}
	case TypeError:
		msg = &ErrorReply{}
	default:
		return nil, fmt.Errorf("unknown server message type: %q", head.Type)
	}
	if err := json.Unmarshal(b, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
