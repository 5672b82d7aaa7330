// Command collidedemo drops spheres onto static geometry and reports what the
// collision world saw. With -png it writes a wireframe of the final frame.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/gekko3d/collide"
	"github.com/gekko3d/collide/camera"
	"github.com/gekko3d/collide/debugdraw"
	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/level"
	"github.com/yohamta/donburi"
)

const (
	imageWidth  = 800
	imageHeight = 600
)

func main() {
	scenePath := flag.String("scene", "", "scene YAML file (default: built-in scene)")
	frames := flag.Int("frames", 0, "override the scene frame count")
	pngPath := flag.String("png", "", "write a wireframe of the last frame to this PNG file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if err := run(*scenePath, *frames, *pngPath, *debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(scenePath string, frames int, pngPath string, debug bool) error {
	scene, err := loadScene(scenePath)
	if err != nil {
		return err
	}
	if frames > 0 {
		scene.Frames = frames
	}
	scene.World.LogDebug = scene.World.LogDebug || debug
	log := collide.NewDefaultLogger(scene.World.LogPrefix, scene.World.LogDebug)
	scene.World.Logger = log

	cw, err := collide.NewCollisionWorld(scene.World)
	if err != nil {
		return err
	}
	defer cw.Dispose()

	if scene.Level != "" {
		lvl, err := level.LoadTMX(os.DirFS(filepath.Dir(scenePath)), scene.Level, level.DefaultOptions())
		if err != nil {
			return err
		}
		if err := lvl.Register(cw); err != nil {
			return err
		}
		defer func() {
			if err := lvl.Unregister(cw); err != nil {
				log.Warnf("unregister level: %v", err)
			}
			if err := lvl.Dispose(); err != nil {
				log.Warnf("dispose level: %v", err)
			}
		}()
		log.Named("level").Infof("%s: %d solids, %d triggers", scene.Level, len(lvl.Solids), len(lvl.Triggers))
	}

	w := donburi.NewWorld()
	defer func() {
		if err := ecs.DespawnAll(w, cw); err != nil {
			log.Warnf("despawn: %v", err)
		}
	}()
	balls, err := scene.populate(w, cw)
	if err != nil {
		return err
	}

	cam := camera.New(scene.Camera.Position, float32(imageWidth)/imageHeight)
	cam.LookAt(scene.Camera.Target)

	var raster *debugdraw.Raster
	if pngPath != "" {
		raster = debugdraw.NewRaster(imageWidth, imageHeight, cam.ViewProjection())
		raster.Clear(color.Black)
		cw.SetDebugDrawer(raster)
	}

	tm := collide.NewTime(time.Unix(0, 0))
	for frame := 1; frame <= scene.Frames; frame++ {
		if raster != nil && frame == scene.Frames {
			cw.EnableDebug()
		}
		tm.Advance(scene.Dt)
		if err := ecs.Step(w, cw, tm, cam); err != nil {
			log.Warnf("frame %d: %v", frame, err)
		}
	}

	fmt.Printf("%d frames, %v simulated\n", scene.Frames, tm.Time.Sub(time.Unix(0, 0)))
	for _, b := range balls {
		p := b.Position()
		fmt.Printf("  %-8s (%.3f, %.3f, %.3f)\n", b.Name, p.X(), p.Y(), p.Z())
	}
	fmt.Print(cw.Profiler().StatsString())

	if raster == nil {
		return nil
	}
	f, err := os.Create(pngPath)
	if err != nil {
		return err
	}
	if err := raster.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	log.Infof("wrote %s (%d lines)", pngPath, raster.Drawn())
	return f.Close()
}
