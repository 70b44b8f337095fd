package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazu/sdftrace/pkg/session"
	"github.com/chazu/sdftrace/pkg/watcher"
)

var (
	watchOutput   string
	watchDebounce time.Duration
	watchView     viewFlags
)

var watchCmd = &cobra.Command{
	Use:   "watch [scene]",
	Short: "Re-render a scene file whenever it changes",
	Long: `Render the scene once, then watch the file and re-render on every save.
Evaluation errors are reported and the previous image is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "out.png", "Output PNG file")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 100*time.Millisecond, "Quiet period after a write before re-rendering")
	watchView.register(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := watchView.apply(cmd, &cfg); err != nil {
		return err
	}

	s, err := session.New(cfg)
	if err != nil {
		return err
	}

	r := &refresher{session: s, output: watchOutput, stderr: cmd.ErrOrStderr()}
	r.refresh(args[0])

	fw, err := watcher.New(watchDebounce)
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(args[0], r.refresh); err != nil {
		return err
	}
	fw.Start()
	log.Printf("watch: watching %s", args[0])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}

// refresher re-evaluates and re-renders one scene. Calls are serialized so
// a save landing during a render waits for it.
type refresher struct {
	mu      sync.Mutex
	session *session.Session
	output  string
	stderr  io.Writer
}

func (r *refresher) refresh(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := evaluateFile(r.session, path, r.stderr); err != nil {
		log.Printf("watch: %v", err)
		return
	}
	if err := writePNG(r.session, r.output); err != nil {
		log.Printf("watch: %v", err)
		return
	}
	log.Printf("watch: wrote %s", r.output)
}
