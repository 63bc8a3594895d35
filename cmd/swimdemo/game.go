package main

import (
	"errors"
	"fmt"
	"image/color"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/ecs"
	"github.com/milk9111/easyswim/engine"
	"github.com/milk9111/easyswim/script"
	"github.com/milk9111/easyswim/swim"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// screen row of world Y = 0
	floorScreenY = 660
)

var pool = cp.BB{L: 520, B: 0, R: 1040, T: 320}

type Game struct {
	rt        *engine.Runtime
	character *engine.Character
	pending   *swim.Pending
	ctrl      *swim.Controller
	input     *inputSystem
	ui        *ebitenui.UI
	hud       ebtext.Face
	watcher   *engine.ConfigWatcher

	scriptPath string
	runner     *script.Runner
}

func NewGame(cfg *engine.Config, scriptPath string, watcher *engine.ConfigWatcher) (*Game, error) {
	input := &inputSystem{}
	rt, err := engine.NewRuntime(cfg, engine.WithSystems(input))
	if err != nil {
		return nil, err
	}

	rt.AddFloor(cp.Vector{X: 0, Y: 0}, cp.Vector{X: baseWidth, Y: 0})
	rt.AddFloor(cp.Vector{X: 0, Y: 0}, cp.Vector{X: 0, Y: baseHeight})
	rt.AddFloor(cp.Vector{X: baseWidth, Y: 0}, cp.Vector{X: baseWidth, Y: baseHeight})
	if _, err := rt.AddWaterVolume(pool); err != nil {
		return nil, err
	}

	g := &Game{
		rt:         rt,
		input:      input,
		hud:        ebtext.NewGoXFace(basicfont.Face7x13),
		watcher:    watcher,
		scriptPath: scriptPath,
	}
	g.ui = newControlPanel(g)

	// the controller is bound by CharacterAdded, which fires inside
	// SpawnCharacter below
	g.pending = swim.OpenAsync(rt, swim.WithLogger(rt.Logger()))
	rt.Events.Connect(g.onEvent)

	player := rt.Players().LocalPlayer()
	g.character, err = rt.SpawnCharacter(player, engine.CharacterSpec{X: 200, Y: 60})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) onEvent(evt ecs.Event) {
	if g.ctrl == nil {
		return
	}
	e, ok := evt.Data.(ecs.Entity)
	if !ok || e != g.character.Entity() {
		return
	}
	switch evt.Type {
	case ecs.EventWaterEntered:
		g.ctrl.Start()
	case ecs.EventWaterExited:
		g.ctrl.Stop()
	}
}

func (g *Game) Update() error {
	if g.ctrl == nil {
		ctrl, err := g.pending.Result()
		switch {
		case errors.Is(err, swim.ErrNotReady):
		case err != nil:
			return err
		default:
			g.ctrl = ctrl
			if err := g.loadScript(); err != nil {
				return err
			}
		}
	}

	g.reloadConfig()
	g.ui.Update()

	if g.runner != nil && !g.runner.Done() {
		if err := g.runner.Step(); err != nil {
			log.Printf("swimdemo: %v", err)
			g.runner = nil
			g.input.frozen = false
		}
	} else {
		g.input.frozen = false
	}

	g.rt.Step()
	return nil
}

func (g *Game) loadScript() error {
	if g.scriptPath == "" {
		return nil
	}
	r, err := script.LoadFile(g.scriptPath, g.ctrl, g.character, g.rt.Logger())
	if err != nil {
		return err
	}
	g.runner = r
	g.input.frozen = true
	return nil
}

func (g *Game) reloadConfig() {
	if g.watcher == nil {
		return
	}
	select {
	case cfg, ok := <-g.watcher.Configs:
		if ok {
			if err := g.rt.ApplyConfig(cfg); err != nil {
				log.Printf("swimdemo: %v", err)
			}
		}
	case err, ok := <-g.watcher.Errors:
		if ok {
			log.Printf("swimdemo: config watch: %v", err)
		}
	default:
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x1b, G: 0x1d, B: 0x24, A: 0xff})

	px, py := toScreen(pool.L, pool.T)
	vector.FillRect(screen, px, py, float32(pool.R-pool.L), float32(pool.T-pool.B), color.RGBA{R: 0x2a, G: 0x6f, B: 0xd6, A: 0x90}, false)
	vector.StrokeRect(screen, px, py, float32(pool.R-pool.L), float32(pool.T-pool.B), 1, colornames.Lightskyblue, false)

	fx, fy := toScreen(0, 0)
	vector.StrokeLine(screen, fx, fy, baseWidth, fy, 2, colornames.Gray, false)

	g.drawCharacter(screen)
	g.drawHUD(screen)
	g.ui.Draw(screen)
}

func (g *Game) drawCharacter(screen *ebiten.Image) {
	part, ok := g.character.RootPart()
	if !ok {
		return
	}
	const w, h = 20, 40
	pos := part.Position()
	x, y := toScreen(pos.X-w/2, pos.Y+h/2)
	clr := colornames.Orange
	if g.ctrl != nil && g.ctrl.IsEnabled() {
		clr = colornames.Gold
	}
	vector.FillRect(screen, x, y, w, h, clr, false)

	if g.ctrl == nil {
		return
	}
	if _, ok := g.ctrl.Rig(); ok {
		cx, cy := toScreen(pos.X, pos.Y)
		vector.StrokeLine(screen, cx, cy, cx, cy-30, 2, colornames.Lime, false)
		vector.FillCircle(screen, cx, cy, 3, colornames.Lime, false)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{fmt.Sprintf("tick %d  fps %.0f", g.rt.Tick(), ebiten.ActualFPS())}
	if h, ok := g.character.Humanoid(); ok {
		lines = append(lines, "state "+h.State().String())
	}
	if part, ok := g.character.RootPart(); ok {
		v := part.AssemblyLinearVelocity()
		lines = append(lines, fmt.Sprintf("velocity (%.1f, %.1f)  mass %.0f", v.X, v.Y, part.AssemblyMass()))
	}
	if g.ctrl != nil {
		lines = append(lines, fmt.Sprintf("swimming %v", g.ctrl.IsEnabled()))
	}
	if g.runner != nil {
		lines = append(lines, fmt.Sprintf("script %s tick %d done=%v", g.scriptPath, g.runner.Tick(), g.runner.Done()))
	}

	for i, line := range lines {
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(12, float64(12+i*16))
		op.ColorScale.ScaleWithColor(colornames.White)
		ebtext.Draw(screen, line, g.hud, op)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

// Close releases the controller and the config watcher.
func (g *Game) Close() error {
	if g.ctrl != nil {
		g.ctrl.Destroy()
	} else {
		g.pending.Cancel()
	}
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}

func toScreen(x, y float64) (float32, float32) {
	return float32(x), float32(floorScreenY - y)
}
