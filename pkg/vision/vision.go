package vision

import (
	"FastGrapher/internal/classifier"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

type Capability int

const (
	FaceLandmarks Capability = iota
	ObjectDetection
)

func (c Capability) String() string {
	switch c {
	case FaceLandmarks:
		return "face landmarks"
	case ObjectDetection:
		return "object detection"
	default:
		return "unknown"
	}
}

var (
	ErrNotConfigured = errors.New("vision service url not configured")
	ErrNotConnected  = errors.New("not connected to vision service")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type IVision interface {
	classifier.FaceDetector
	classifier.ObjectDetector
	IsConnected(capability Capability) bool
	Reconnect(ctx context.Context, capability Capability) error
	CloseConnections()
}

// channel is one persistent connection to a model endpoint. Requests on a
// channel are serialized by reqMu since replies carry no correlation id.
type channel struct {
	url   string
	conn  *websocket.Conn
	reqMu sync.Mutex
}

type Client struct {
	channels map[Capability]*channel
	mu       sync.Mutex
	log      *logrus.Logger

	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxSide      int
	quality      int
}

type Option func(*Client)

func WithURL(capability Capability, url string) Option {
	return func(c *Client) {
		c.channels[capability] = &channel{url: url}
	}
}

// WithMaxSide bounds the longest side of frames sent to the service.
func WithMaxSide(px int) Option {
	return func(c *Client) {
		if px > 0 {
			c.maxSide = px
		}
	}
}

func WithTimeouts(read, write time.Duration) Option {
	return func(c *Client) {
		c.readTimeout = read
		c.writeTimeout = write
	}
}

// New configures the client from VISION_FACE_URL, VISION_OBJECT_URL and
// VISION_MAX_SIDE. It does not dial; use Reconnect or the loaders.
func New(log *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		channels: map[Capability]*channel{
			FaceLandmarks:   {url: os.Getenv("VISION_FACE_URL")},
			ObjectDetection: {url: os.Getenv("VISION_OBJECT_URL")},
		},
		log:          log,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
		maxSide:      1280,
		quality:      90,
	}
	if v, err := strconv.Atoi(os.Getenv("VISION_MAX_SIDE")); err == nil && v > 0 {
		c.maxSide = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FaceLoader dials the landmark endpoint once at startup.
func (c *Client) FaceLoader() classifier.FaceLoader {
	return func(ctx context.Context) (classifier.FaceDetector, error) {
		if err := c.Reconnect(ctx, FaceLandmarks); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func (c *Client) ObjectLoader() classifier.ObjectLoader {
	return func(ctx context.Context) (classifier.ObjectDetector, error) {
		if err := c.Reconnect(ctx, ObjectDetection); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func (c *Client) channel(capability Capability) (*channel, error) {
	ch, ok := c.channels[capability]
	if !ok || ch.url == "" {
		return nil, fmt.Errorf("%s: %w", capability, ErrNotConfigured)
	}
	return ch, nil
}

func (c *Client) IsConnected(capability Capability) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.channels[capability]
	return ok && ch.conn != nil
}

// Reconnect replaces the connection of capability. The dial honors ctx.
func (c *Client) Reconnect(ctx context.Context, capability Capability) error {
	ch, err := c.channel(capability)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ch.conn != nil {
		ch.conn.Close()
		ch.conn = nil
	}

	c.log.WithFields(logrus.Fields{
		"capability": capability.String(),
		"url":        ch.url,
	}).Info("[vision.Reconnect] connecting to vision service")

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, ch.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", ch.url, err)
	}

	writeTimeout := c.writeTimeout
	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeTimeout))
		if err != nil {
			c.log.WithField("error", err.Error()).Warn("[vision] failed to send pong")
		}
		return nil
	})

	ch.conn = conn
	go c.keepAlive(capability, conn)

	return nil
}

func (c *Client) CloseConnections() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.channels {
		if ch.conn != nil {
			ch.conn.Close()
			ch.conn = nil
		}
	}
}

func (c *Client) keepAlive(capability Capability, conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		ch := c.channels[capability]
		if ch.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.WithFields(logrus.Fields{
				"capability": capability.String(),
				"error":      err.Error(),
			}).Warn("[vision.keepAlive] ping failed, marking connection as dead")
			ch.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

func (c *Client) connection(ctx context.Context, capability Capability) (*websocket.Conn, error) {
	c.mu.Lock()
	ch := c.channels[capability]
	conn := ch.conn
	c.mu.Unlock()

	if conn != nil {
		return conn, nil
	}
	if err := c.Reconnect(ctx, capability); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ch.conn == nil {
		return nil, ErrNotConnected
	}
	return ch.conn, nil
}

func (c *Client) drop(capability Capability, conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch := c.channels[capability]; ch.conn == conn {
		ch.conn = nil
	}
	conn.Close()
}

// roundTrip sends one encoded frame and waits for its reply.
func (c *Client) roundTrip(ctx context.Context, capability Capability, payload []byte) ([]byte, error) {
	ch, err := c.channel(capability)
	if err != nil {
		return nil, err
	}

	ch.reqMu.Lock()
	defer ch.reqMu.Unlock()

	// A request that expired while queued must not touch the shared
	// connection: its past deadline would fail the write and drop it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := c.connection(ctx, capability)
	if err != nil {
		return nil, err
	}

	writeDeadline := deadline(ctx, c.writeTimeout)
	readDeadline := deadline(ctx, c.readTimeout)

	c.mu.Lock()
	conn.SetWriteDeadline(writeDeadline)
	err = conn.WriteMessage(websocket.TextMessage, payload)
	c.mu.Unlock()
	if err != nil {
		c.drop(capability, conn)
		return nil, fmt.Errorf("error sending %s frame: %w", capability, err)
	}

	conn.SetReadDeadline(readDeadline)
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(capability, conn)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("error reading %s reply: %w", capability, err)
	}
	conn.SetReadDeadline(time.Time{})

	return message, nil
}

func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

type faceReply struct {
	Faces []struct {
		Landmarks classifier.Face `json:"landmarks"`
	} `json:"faces"`
	Error string `json:"error,omitempty"`
}

type objectReply struct {
	Detections []struct {
		Class string     `json:"class"`
		Score float64    `json:"score"`
		BBox  [4]float64 `json:"bbox"`
	} `json:"detections"`
	Error string `json:"error,omitempty"`
}

func (c *Client) DetectFaces(ctx context.Context, frame *classifier.Frame) ([]classifier.Face, error) {
	payload, sx, sy, err := c.encode(frame)
	if err != nil {
		return nil, err
	}

	message, err := c.roundTrip(ctx, FaceLandmarks, payload)
	if err != nil {
		return nil, err
	}

	var reply faceReply
	if err := json.Unmarshal(message, &reply); err != nil {
		return nil, fmt.Errorf("error unmarshaling face reply: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("face service: %s", reply.Error)
	}

	faces := make([]classifier.Face, 0, len(reply.Faces))
	for _, f := range reply.Faces {
		faces = append(faces, f.Landmarks.Scale(sx, sy))
	}

	c.log.WithFields(logrus.Fields{
		"faces": len(faces),
	}).Debug("[vision.DetectFaces] received landmarks")

	return faces, nil
}

func (c *Client) DetectObjects(ctx context.Context, frame *classifier.Frame) ([]classifier.Detection, error) {
	payload, sx, sy, err := c.encode(frame)
	if err != nil {
		return nil, err
	}

	message, err := c.roundTrip(ctx, ObjectDetection, payload)
	if err != nil {
		return nil, err
	}

	var reply objectReply
	if err := json.Unmarshal(message, &reply); err != nil {
		return nil, fmt.Errorf("error unmarshaling object reply: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("object service: %s", reply.Error)
	}

	detections := make([]classifier.Detection, 0, len(reply.Detections))
	for _, d := range reply.Detections {
		detections = append(detections, classifier.Detection{
			ClassLabel: d.Class,
			Confidence: d.Score,
			BBox: classifier.BBox{
				X:      d.BBox[0] * sx,
				Y:      d.BBox[1] * sy,
				Width:  d.BBox[2] * sx,
				Height: d.BBox[3] * sy,
			},
		})
	}

	c.log.WithFields(logrus.Fields{
		"detections": len(detections),
	}).Debug("[vision.DetectObjects] received detections")

	return detections, nil
}

// encode downscales the frame so its longest side fits maxSide, JPEG-encodes
// it and wraps it in base64. sx and sy map reply coordinates back onto the
// original frame.
func (c *Client) encode(frame *classifier.Frame) (payload []byte, sx, sy float64, err error) {
	if frame == nil || frame.Image == nil {
		return nil, 0, 0, classifier.ErrEmptyImage
	}

	src := frame.Image
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	img := src
	tw, th := fitWithin(w, h, c.maxSide)
	if tw != w || th != h {
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.ApproxBiLinear.Scale(dst, dst.Rect, src, b, draw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode frame: %w", err)
	}

	payload = make([]byte, base64.StdEncoding.EncodedLen(buf.Len()))
	base64.StdEncoding.Encode(payload, buf.Bytes())

	return payload, float64(w) / float64(tw), float64(h) / float64(th), nil
}

func fitWithin(w, h, maxSide int) (int, int) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h
	}
	if w >= h {
		th := h * maxSide / w
		if th < 1 {
			th = 1
		}
		return maxSide, th
	}
	tw := w * maxSide / h
	if tw < 1 {
		tw = 1
	}
	return tw, maxSide
}
