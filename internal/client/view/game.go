// Package view is the ebiten window for the client: it feeds cursor motion
// and the fire button into a client.Session and draws the reconciled view.
package view

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"lagcomp/internal/client"
	"lagcomp/internal/config"
	"lagcomp/pkg/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"
)

const (
	ScreenWidth  = 960
	ScreenHeight = 540
	FPS          = core.TPS

	fieldOfView   = 70 * math.Pi / 180
	nearPlane     = 0.1
	soundFlashFor = 400 * time.Millisecond
)

var hudFont = text.NewGoXFace(basicfont.Face7x13)

var (
	backgroundColor = color.RGBA{24, 26, 32, 255}
	gridColor       = color.RGBA{60, 64, 74, 255}
	targetColor     = color.RGBA{220, 80, 60, 255}
	crosshairColor  = color.RGBA{240, 240, 240, 255}
	hudColor        = color.RGBA{200, 210, 220, 255}
)

type flash struct {
	sound core.SoundType
	at    time.Time
}

// Game implements ebiten.Game.
type Game struct {
	session *client.Session
	network *client.NetworkClient

	reloadCh chan config.ClientConfig

	lastUpdate time.Time
	lastX      int
	lastY      int
	sampled    bool
	flashes    []flash
}

// NewGame wires a connected NetworkClient to a fresh Session.
func NewGame(network *client.NetworkClient, cfg config.ClientConfig, tickPeriod time.Duration, log zerolog.Logger) *Game {
	session := client.NewSession(network, client.SessionConfig{
		SendHz:              float64(cfg.SendHz),
		Sensitivity:         cfg.Sensitivity,
		EntityInterpolation: cfg.EntityInterpolation,
		Subtick:             cfg.Subtick,
		UpdatePeriod:        tickPeriod.Seconds(),
		Log:                 log,
	})
	return &Game{
		session:    session,
		network:    network,
		reloadCh:   make(chan config.ClientConfig, 1),
		lastUpdate: time.Now(),
	}
}

// Session exposes the driver for tests and tools.
func (g *Game) Session() *client.Session { return g.session }

// Reload hands new client settings to the game loop. Safe to call from any
// goroutine; only the newest pending settings are kept.
func (g *Game) Reload(cfg config.ClientConfig) {
	select {
	case <-g.reloadCh:
	default:
	}
	g.reloadCh <- cfg
}

// Update runs one frame.
func (g *Game) Update() error {
	if err := g.network.Err(); err != nil {
		return err
	}

	now := time.Now()
	dt := now.Sub(g.lastUpdate).Seconds()
	g.lastUpdate = now

	select {
	case cfg := <-g.reloadCh:
		g.applyConfig(now, cfg)
	default:
	}

	x, y := ebiten.CursorPosition()
	if !g.sampled || x != g.lastX || y != g.lastY {
		g.session.OnPointer(float64(x), float64(y))
		g.lastX, g.lastY = x, y
		g.sampled = true
	}

	fire := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	res := g.session.Update(now, fire, dt)
	for _, ev := range res.Sounds {
		g.flashes = append(g.flashes, flash{sound: ev.Sound, at: now})
	}
	g.expireFlashes(now)
	return nil
}

func (g *Game) applyConfig(now time.Time, cfg config.ClientConfig) {
	g.session.SetSensitivity(cfg.Sensitivity)
	g.session.SetEntityInterpolation(cfg.EntityInterpolation)
	g.session.SetSubtick(cfg.Subtick)
	g.session.SetSendRate(now, float64(cfg.SendHz))
}

func (g *Game) expireFlashes(now time.Time) {
	keep := g.flashes[:0]
	for _, f := range g.flashes {
		if now.Sub(f.at) < soundFlashFor {
			keep = append(keep, f)
		}
	}
	g.flashes = keep
}

// Draw renders the floor grid, the target and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	cam := g.session.Camera()
	view := newViewProjection(cam)

	g.drawGrid(screen, view)
	if g.session.HasTarget() {
		g.drawTarget(screen, view, g.session.Target())
	}
	g.drawCrosshair(screen)
	g.drawHUD(screen, cam)
}

func (g *Game) drawGrid(screen *ebiten.Image, view viewProjection) {
	const floorY = -core.TargetHeightStanding
	half := core.RoomSize / 2
	for i := -half; i <= half; i += 2 {
		g.drawLine(screen, view, core.Vec3{X: i, Y: floorY, Z: -half}, core.Vec3{X: i, Y: floorY, Z: half})
		g.drawLine(screen, view, core.Vec3{X: -half, Y: floorY, Z: i}, core.Vec3{X: half, Y: floorY, Z: i})
	}
}

func (g *Game) drawLine(screen *ebiten.Image, view viewProjection, a, b core.Vec3) {
	ax, ay, okA := view.project(a)
	bx, by, okB := view.project(b)
	if !okA || !okB {
		return
	}
	vector.StrokeLine(screen, ax, ay, bx, by, 1, gridColor, false)
}

func (g *Game) drawTarget(screen *ebiten.Image, view viewProjection, pos core.Vec3) {
	cx, cy, ok := view.project(pos)
	if !ok {
		return
	}
	depth := view.depth(pos)
	r := float32(view.focal * core.TargetRadius / depth)
	h := float32(view.focal * (core.TargetHeightStanding - 2*core.TargetRadius) / depth)
	vector.DrawFilledRect(screen, cx-r, cy-h/2, 2*r, h, targetColor, false)
	vector.FillCircle(screen, cx, cy-h/2, r, targetColor, false)
	vector.FillCircle(screen, cx, cy+h/2, r, targetColor, false)
}

func (g *Game) drawCrosshair(screen *ebiten.Image) {
	cx, cy := float32(ScreenWidth/2), float32(ScreenHeight/2)
	vector.StrokeLine(screen, cx-8, cy, cx+8, cy, 1, crosshairColor, false)
	vector.StrokeLine(screen, cx, cy-8, cx, cy+8, 1, crosshairColor, false)
}

func (g *Game) drawHUD(screen *ebiten.Image, cam core.CameraState) {
	cfg := g.session.Config()
	lines := []string{
		fmt.Sprintf("FPS %.0f  RTT %s", ebiten.ActualFPS(), g.network.RTT().Round(time.Millisecond)),
		fmt.Sprintf("yaw %.3f  pitch %.3f", cam.Yaw, cam.Pitch),
		fmt.Sprintf("camera tick %d  entity tick %d", g.session.CameraTick(), g.session.EntityTick()),
		fmt.Sprintf("seq %d  pending %d  dropped %d", g.session.LastSequence(), g.session.PendingInputs(), g.session.DroppedInputs()),
		fmt.Sprintf("stale %d  lost updates %d", g.session.StaleDropped(), g.network.DroppedUpdates()),
		fmt.Sprintf("interp %t  subtick %t  sens %.4f", cfg.EntityInterpolation, cfg.Subtick, cfg.Sensitivity),
	}
	if shot := g.session.LastShot(); shot != nil {
		lines = append(lines, fmt.Sprintf("last shot: hit=%t @tick %d", shot.Hit, shot.CameraTick))
	}
	for _, f := range g.flashes {
		lines = append(lines, f.sound.String())
	}

	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(10, float64(10+i*16))
		op.ColorScale.ScaleWithColor(hudColor)
		text.Draw(screen, line, hudFont, op)
	}
}

// Layout fixes the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// viewProjection maps world points to screen pixels for a camera at the eye.
type viewProjection struct {
	forward, right, up core.Vec3
	focal              float64
}

func newViewProjection(cam core.CameraState) viewProjection {
	f := cam.Forward()
	r := f.Cross(core.Vec3{Y: 1}).Normalize()
	return viewProjection{
		forward: f,
		right:   r,
		up:      r.Cross(f),
		focal:   (ScreenWidth / 2) / math.Tan(fieldOfView/2),
	}
}

func (v viewProjection) depth(p core.Vec3) float64 {
	return p.Sub(core.EyeOrigin).Dot(v.forward)
}

func (v viewProjection) project(p core.Vec3) (float32, float32, bool) {
	d := p.Sub(core.EyeOrigin)
	z := d.Dot(v.forward)
	if z < nearPlane {
		return 0, 0, false
	}
	x := ScreenWidth/2 + v.focal*d.Dot(v.right)/z
	y := ScreenHeight/2 - v.focal*d.Dot(v.up)/z
	return float32(x), float32(y), true
}
