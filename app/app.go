package app

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gobwas/glob"
	"github.com/gosuri/uilive"
	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("text4shell/app")

type scanner struct {
	config

	writer *uilive.Writer
	output *writer

	targetPath   string
	excludeList  []string
	excludeDirs  []string
	excludeGlobs []glob.Glob

	images []string
	docker imageAPI

	stats Stats
}

type writer struct {
	w io.Writer
	m sync.Mutex
}

func NewWriter(w io.Writer) *writer {
	return &writer{
		w: w,
		m: sync.Mutex{},
	}
}

func (w *writer) WriteLine(format string, args ...interface{}) {
	w.m.Lock()
	defer w.m.Unlock()

	fmt.Fprintln(w.w, fmt.Sprintf(format, args...))
}

func New(options ...OptionFn) (*scanner, error) {
	b := &scanner{
		config: config{
			out: color.Output,
		},
	}

	for _, optionFunc := range options {
		if err := optionFunc(b); err != nil {
			return nil, err
		}
	}

	if b.progress {
		b.writer = uilive.New()
		b.writer.Out = b.out
		b.output = NewWriter(b.writer.Bypass())
	} else {
		b.output = NewWriter(b.out)
	}

	return b, nil
}

func (b *scanner) Stats() *Stats {
	return &b.stats
}

// report prints err unless running quiet. Errors never stop the scan.
func (b *scanner) report(err error) {
	b.stats.IncError()

	log.Debugf("error: %s", err)

	if b.quiet {
		return
	}

	b.output.WriteLine("%s", err.Error())
}

func (b *scanner) reportError(label string, err error) {
	b.report(&ArchiveError{p: label, Err: err})
}

func (b *scanner) warnConfusion(name string) {
	b.stats.IncWarning()

	if b.quiet {
		return
	}

	b.output.WriteLine("%s: %s contains multiple copies of %s; result may be invalid", color.YellowString("Warning"), name, TargetClass)
}

func (b *scanner) printDiagnosis(label string, d Diagnosis) {
	b.stats.IncDiagnosis(d.Status)

	b.output.WriteLine("%s >> %s %s", label, d.Status.Colored(), d.Note)
}

func (b *scanner) updateProgress() {
	if b.writer == nil {
		return
	}

	fmt.Fprintf(b.writer, "scanned %d files, %d containers (%s), %d errors\n",
		b.stats.Files(), b.stats.Containers(), humanize.Bytes(b.stats.Bytes()), b.stats.Errors())

	if err := b.writer.Flush(); err != nil {
		log.Debugf("could not update progress: %s", err)
	}
}

func (b *scanner) logSummary(start time.Time) {
	log.Infof("scanned %d files and %d images (%s), %d containers in %s",
		b.stats.Files(), b.stats.Images(), humanize.Bytes(b.stats.Bytes()), b.stats.Containers(), FormatDuration(time.Since(start)))
	log.Infof("%d vulnerable, %d fixed, %d mitigated, %d inconsistent, %d warnings, %d errors",
		b.stats.Vulnerable(), b.stats.Fixed(), b.stats.Mitigated(), b.stats.Inconsistent(), b.stats.Warnings(), b.stats.Errors())
}

type Stats struct {
	files        uint64
	images       uint64
	containers   uint64
	bytes        uint64
	errors       uint64
	warnings     uint64
	vulnerable   uint64
	fixed        uint64
	mitigated    uint64
	inconsistent uint64
}

func (s *Stats) Files() uint64 {
	return atomic.LoadUint64(&s.files)
}

func (s *Stats) IncFile() {
	atomic.AddUint64(&s.files, 1)
}

func (s *Stats) Images() uint64 {
	return atomic.LoadUint64(&s.images)
}

func (s *Stats) IncImage() {
	atomic.AddUint64(&s.images, 1)
}

func (s *Stats) Containers() uint64 {
	return atomic.LoadUint64(&s.containers)
}

func (s *Stats) IncContainer() {
	atomic.AddUint64(&s.containers, 1)
}

func (s *Stats) Bytes() uint64 {
	return atomic.LoadUint64(&s.bytes)
}

func (s *Stats) AddBytes(n int64) {
	if n > 0 {
		atomic.AddUint64(&s.bytes, uint64(n))
	}
}

func (s *Stats) Errors() uint64 {
	return atomic.LoadUint64(&s.errors)
}

func (s *Stats) IncError() {
	atomic.AddUint64(&s.errors, 1)
}

func (s *Stats) Warnings() uint64 {
	return atomic.LoadUint64(&s.warnings)
}

func (s *Stats) IncWarning() {
	atomic.AddUint64(&s.warnings, 1)
}

func (s *Stats) Vulnerable() uint64 {
	return atomic.LoadUint64(&s.vulnerable)
}

func (s *Stats) Fixed() uint64 {
	return atomic.LoadUint64(&s.fixed)
}

func (s *Stats) Mitigated() uint64 {
	return atomic.LoadUint64(&s.mitigated)
}

func (s *Stats) Inconsistent() uint64 {
	return atomic.LoadUint64(&s.inconsistent)
}

func (s *Stats) IncDiagnosis(st Status) {
	switch st {
	case StatusVulnerable:
		atomic.AddUint64(&s.vulnerable, 1)
	case StatusFixed:
		atomic.AddUint64(&s.fixed, 1)
	case StatusMitigated:
		atomic.AddUint64(&s.mitigated, 1)
	default:
		atomic.AddUint64(&s.inconsistent, 1)
	}
}

func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02dh:%02dm:%02ds", h, m, s)
}
