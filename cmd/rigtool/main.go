// rigtool is a CLI utility for inspecting and playing skeletal rig assets.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rig/internal/anim"
	"github.com/Faultbox/midgard-rig/internal/animator"
	"github.com/Faultbox/midgard-rig/internal/config"
	"github.com/Faultbox/midgard-rig/internal/logger"
	"github.com/Faultbox/midgard-rig/internal/rig"
	"github.com/Faultbox/midgard-rig/internal/scene"
	"github.com/Faultbox/midgard-rig/internal/skeleton"
	"github.com/Faultbox/midgard-rig/internal/transform"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "pose":
		err = cmdPose(args, false)
	case "skin":
		err = cmdPose(args, true)
	case "play":
		err = cmdPlay(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rigtool - skeletal rig inspection and playback

Usage:
  rigtool <command> [options]

Commands:
  info <rig.yaml>                    Show joints and clips
  pose <rig.yaml> <clip> <seconds>   Print joint world matrices at a time
  skin <rig.yaml> <clip> <seconds>   Print skinning matrices at a time
  play [flags] [rig.yaml] [clip]     Simulate instances on the animator pool

Play flags:
  -config, -debug, -rig, -clip, -speed, -step, -duration, -instances, -workers

Examples:
  rigtool info walker.yaml
  rigtool pose walker.yaml walk 0.5
  rigtool play -instances 64 -workers 8 walker.yaml walk`)
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rigtool info <rig.yaml>")
	}

	r, err := rig.Load(args[0])
	if err != nil {
		return err
	}

	skel := r.Skeleton
	fmt.Printf("Rig:    %s\n", r.Name)
	fmt.Printf("Joints: %d (root %q)\n", skel.Len(), skel.Names()[skel.RootIndex()])
	fmt.Println()

	rest := skel.RestTransforms()
	for i := 0; i < skel.Len(); i++ {
		j, _ := skel.Joint(i)
		parent := "-"
		if j.Parent != skeleton.NoParent {
			parent = skel.Names()[j.Parent]
		}
		fmt.Printf("  %3d %-16s parent %-16s rest %s\n", i, j.Name, parent, formatVec(rest[i].Translation()))
	}

	fmt.Println()
	fmt.Printf("Clips: %d\n", len(r.Clips))
	for _, c := range r.Clips {
		m := anim.NewPoseMap(c, skel)
		fmt.Printf("  %-16s %6.2fs  %d channels (%d mapped)\n", c.Name(), c.Duration(), c.ChannelCount(), m.Resolved())
	}
	return nil
}

func cmdPose(args []string, skin bool) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: rigtool pose|skin <rig.yaml> <clip> <seconds>")
	}

	r, clip, err := loadClip(args[0], args[1])
	if err != nil {
		return err
	}
	seconds, err := strconv.ParseFloat(args[2], 32)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", args[2], err)
	}

	a := animator.New(clip, r.Skeleton)
	if err := a.Seek(float32(seconds)); err != nil {
		return err
	}

	mats := r.Skeleton.FinalTransforms()
	if skin {
		mats = r.Skeleton.SkinningMatrices(nil)
	}
	fmt.Printf("%s @ %.3fs (tick %.3f)\n", clip.Name(), a.Time(), clip.TickTime(a.Time()))
	for i, name := range r.Skeleton.Names() {
		fmt.Printf("  %-16s %s\n", name, formatMat(mats[i]))
	}
	return nil
}

func cmdPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	flags := config.BindFlags(fs)
	fs.Parse(args)

	if fs.NArg() > 0 {
		flags.Rig = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		flags.Clip = fs.Arg(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Rig.Path == "" || cfg.Rig.Clip == "" {
		return fmt.Errorf("play needs a rig and a clip (arguments, -rig/-clip or config)")
	}
	r, clip, err := loadClip(cfg.Rig.Path, cfg.Rig.Clip)
	if err != nil {
		return err
	}

	sc := scene.New(scene.WithLogger(logger.Named("scene")))
	animators := make([]*animator.Animator, cfg.Playback.Instances)
	ids := make([]scene.EntityID, cfg.Playback.Instances)
	for i := range animators {
		id, err := sc.Spawn(fmt.Sprintf("%s-%d", r.Name, i),
			transform.At(transform.NodeRef{}, math.Vec3{X: float32(i) * 2}))
		if err != nil {
			return err
		}
		skel := r.Skeleton.Clone()
		if err := sc.BindSkeleton(id, skel); err != nil {
			return err
		}
		a := animator.New(clip, skel)
		a.SetSpeed(cfg.Playback.Speed)
		animators[i], ids[i] = a, id
	}

	pool := animator.NewPool(cfg.Workers.Count, logger.Named("animator"))
	root := r.Skeleton.Names()[r.Skeleton.RootIndex()]
	rootNode, err := sc.JointNode(ids[0], root)
	if err != nil {
		return err
	}

	logger.Info("playing",
		zap.String("rig", cfg.Rig.Path),
		zap.String("clip", clip.Name()),
		zap.Int("instances", len(animators)),
		zap.Int("workers", pool.Size()),
		zap.Duration("step", cfg.Playback.Step))

	dt := float32(cfg.Playback.Step.Seconds())
	steps := int(cfg.Playback.Duration / cfg.Playback.Step)
	start := time.Now()
	for step := 1; step <= steps; step++ {
		if err := pool.Update(animators, dt); err != nil {
			return err
		}
		if err := sc.SyncAll(); err != nil {
			return err
		}

		pos, err := sc.Graph().WorldPosition(rootNode)
		if err != nil {
			return err
		}
		logger.Debug("tick",
			zap.Int("step", step),
			zap.Float32("time", animators[0].Time()),
			zap.String("root", formatVec(pos)))
	}

	elapsed := time.Since(start)
	logger.Info("done",
		zap.Int("steps", steps),
		zap.Duration("elapsed", elapsed),
		zap.Int("nodes", sc.Graph().Len()))
	return nil
}

func loadClip(path, name string) (*rig.Rig, *anim.Clip, error) {
	r, err := rig.Load(path)
	if err != nil {
		return nil, nil, err
	}
	clip, ok := r.Clip(name)
	if !ok {
		return nil, nil, fmt.Errorf("rig %s has no clip %q", path, name)
	}
	return r, clip, nil
}

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%7.3f %7.3f %7.3f)", v.X, v.Y, v.Z)
}

// formatMat prints the matrix row by row.
func formatMat(m math.Mat4) string {
	s := ""
	for row := 0; row < 4; row++ {
		if row > 0 {
			s += " | "
		}
		s += fmt.Sprintf("%7.3f %7.3f %7.3f %7.3f", m[row], m[4+row], m[8+row], m[12+row])
	}
	return s
}
