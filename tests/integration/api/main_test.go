package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/JackWithOneEye/pcviewer/internal/animation"
	"github.com/JackWithOneEye/pcviewer/internal/database"
	"github.com/JackWithOneEye/pcviewer/internal/engine"
	"github.com/JackWithOneEye/pcviewer/internal/protocol"
	"github.com/JackWithOneEye/pcviewer/internal/server"
	"github.com/JackWithOneEye/pcviewer/internal/viewer"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type APITestSuite struct {
	suite.Suite
	registry *server.Registry
	db       database.DatabaseService
	stream   *httptest.Server
	assets   *httptest.Server
}

type testConfig struct {
	dbUrl string
}

func (c *testConfig) Host() string                      { return "127.0.0.1" }
func (c *testConfig) Port() uint                        { return 8765 }
func (c *testConfig) HTTPPort() uint                    { return 8000 }
func (c *testConfig) SessionIdleTimeout() time.Duration { return 0 }
func (c *testConfig) ShowAxes() bool                    { return true }
func (c *testConfig) ShowRings() bool                   { return false }
func (c *testConfig) FrameCacheSize() int               { return 2 }
func (c *testConfig) DBUrl() string                     { return c.dbUrl }

// frame i holds the points (i,0,0) and (i,1,0)
var testPoints = [][][]float64{
	{{0, 0, 0}, {0, 1, 0}},
	{{1, 0, 0}, {1, 1, 0}},
	{{2, 0, 0}, {2, 1, 0}},
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (suite *APITestSuite) SetupTest() {
	cfg := &testConfig{dbUrl: filepath.Join(suite.T().TempDir(), "journal.db")}

	buffer, err := animation.Validate(testPoints, nil)
	suite.Require().NoError(err)

	db, err := database.NewDatabaseService(cfg)
	suite.Require().NoError(err)

	suite.registry = server.NewRegistry()
	s := server.NewServer(cfg, engine.NewEngine(cfg, buffer), suite.registry, db)
	suite.stream = httptest.NewServer(s.Handler())

	assets := fstest.MapFS{"index.html": {Data: []byte(`<html><head></head><body></body></html>`)}}
	suite.assets = httptest.NewServer(viewer.NewHandler(cfg, assets, db))
	suite.db = db
}

func (suite *APITestSuite) TearDownTest() {
	suite.stream.Close()
	suite.assets.Close()
	suite.db.Close()
}

func (suite *APITestSuite) dial() *websocket.Conn {
	u, err := url.Parse(suite.stream.URL)
	suite.Require().NoError(err)
	u.Scheme = "ws"

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { c.Close() })
	return c
}

func (suite *APITestSuite) read(c *websocket.Conn) protocol.ServerMessage {
	_, msg, err := c.ReadMessage()
	suite.Require().NoError(err)
	out, err := protocol.DecodeServerMessage(msg)
	suite.Require().NoError(err)
	return out
}

func (suite *APITestSuite) send(c *websocket.Conn, raw string) {
	suite.Require().NoError(c.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func (suite *APITestSuite) pointCloud(c *websocket.Conn) *protocol.PointCloud {
	out := suite.read(c)
	pc, ok := out.(*protocol.PointCloud)
	suite.Require().True(ok, "expected point_cloud, got %T", out)
	return pc
}

func (suite *APITestSuite) TestInitIsFirst() {
	c := suite.dial()
	suite.Equal(protocol.NewInit(3, true, false), suite.read(c))
}

func (suite *APITestSuite) TestLoadFrameZero() {
	c := suite.dial()
	suite.read(c)

	suite.send(c, `{"command":"load_frame","frame_idx":0}`)
	pc := suite.pointCloud(c)
	suite.Equal(0, pc.FrameIdx)
	suite.Equal([][3]float64{{0, 0, 0}, {0, 1, 0}}, pc.Points)
	suite.Equal([][3]float64{{0, 0, 1}, {0, 0, 1}}, pc.Colors)
}

func (suite *APITestSuite) TestFrameIndexWraps() {
	c := suite.dial()
	suite.read(c)

	for _, tc := range []struct {
		raw  string
		want int
	}{
		{`{"command":"load_frame","frame_idx":5}`, 2},
		{`{"command":"load_frame","frame_idx":-1}`, 2},
		{`{"command":"load_frame","frame_idx":3}`, 0},
		{`{"command":"load_frame"}`, 0},
		{`{"command":"load_frame","frame_idx":"2"}`, 0},
		{`{"command":"load_frame","frame_idx":1.0}`, 1},
	} {
		suite.send(c, tc.raw)
		pc := suite.pointCloud(c)
		suite.Equal(tc.want, pc.FrameIdx, tc.raw)
		suite.Equal(float64(tc.want), pc.Points[0][0], tc.raw)
	}
}

func (suite *APITestSuite) TestConcurrentSessionsAreIsolated() {
	a := suite.dial()
	b := suite.dial()
	suite.read(a)
	suite.read(b)
	suite.Eventually(func() bool { return suite.registry.Len() == 2 }, time.Second, 10*time.Millisecond)

	var wg sync.WaitGroup
	got := make([][]int, 2)
	for i, tc := range []struct {
		c   *websocket.Conn
		idx []int
	}{
		{a, []int{0, 1, 2, 0, 1}},
		{b, []int{2, 2, 1, 1, 0}},
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, idx := range tc.idx {
				raw, _ := protocol.LoadFrame(idx).Encode()
				if err := tc.c.WriteMessage(websocket.TextMessage, raw); err != nil {
					return
				}
				_, msg, err := tc.c.ReadMessage()
				if err != nil {
					return
				}
				out, err := protocol.DecodeServerMessage(msg)
				if err != nil {
					return
				}
				if pc, ok := out.(*protocol.PointCloud); ok {
					got[i] = append(got[i], pc.FrameIdx)
				}
			}
		}()
	}
	wg.Wait()

	suite.Equal([]int{0, 1, 2, 0, 1}, got[0])
	suite.Equal([]int{2, 2, 1, 1, 0}, got[1])
}

func (suite *APITestSuite) TestInvalidJSONThenRecovery() {
	c := suite.dial()
	suite.read(c)

	suite.send(c, `not json`)
	suite.send(c, `{"frame_idx":1}`)
	suite.send(c, `{"command":"load_frame","frame_idx":1}`)

	// the broken messages get no reply, so the next message is the frame
	pc := suite.pointCloud(c)
	suite.Equal(1, pc.FrameIdx)
	suite.Equal(1, suite.registry.Len())
}

func (suite *APITestSuite) TestUnknownCommandGetsErrorReply() {
	c := suite.dial()
	suite.read(c)

	suite.send(c, `{"command":"rewind"}`)
	suite.Equal(protocol.NewErrorReply("rewind", "unknown command"), suite.read(c))

	suite.send(c, `{"command":"load_frame","frame_idx":2}`)
	suite.Equal(2, suite.pointCloud(c).FrameIdx)
}

func (suite *APITestSuite) TestDisconnectDeregistersAndJournals() {
	c := suite.dial()
	suite.read(c)
	suite.send(c, `{"command":"load_frame","frame_idx":1}`)
	suite.pointCloud(c)
	suite.Equal(1, suite.registry.Len())

	suite.Require().NoError(c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	suite.Eventually(func() bool { return suite.registry.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	var recs []database.SessionRecord
	suite.Eventually(func() bool {
		resp, err := http.Get(suite.assets.URL + "/sessions")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil || resp.StatusCode != http.StatusOK {
			return false
		}
		return json.Unmarshal(b, &recs) == nil && len(recs) == 1
	}, 2*time.Second, 10*time.Millisecond)
	suite.Require().Len(recs, 1)
	suite.Equal(int64(1), recs[0].FramesServed)
	suite.Equal(int64(1), recs[0].Commands)
	suite.NotEmpty(recs[0].ID)

	stored, err := suite.db.GetSessions(context.Background(), 10)
	suite.Require().NoError(err)
	suite.Equal(recs[0].ID, stored[0].ID)
}

func (suite *APITestSuite) TestViewerPointsAtStreamPort() {
	resp, err := http.Get(suite.assets.URL + "/")
	suite.Require().NoError(err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(b), "wsPort: 8765")
}
