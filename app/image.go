package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// imageAPI is the part of the docker engine client used for scanning.
type imageAPI interface {
	ImageList(ctx context.Context, options types.ImageListOptions) ([]types.ImageSummary, error)
	ImageSave(ctx context.Context, imageIDs []string) (io.ReadCloser, error)
	Close() error
}

func withImageAPI(api imageAPI) OptionFn {
	return func(b *scanner) error {
		b.docker = api
		return nil
	}
}

// ScanImage exports every requested image from the local engine and scans
// the exported tar, including all layers, as a single container.
func (b *scanner) ScanImage(ctx context.Context) error {
	if b.docker == nil {
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return err
		}

		b.docker = cli
	}

	defer b.docker.Close()

	start := time.Now()

	refs := b.images
	if b.allImages {
		summaries, err := b.docker.ImageList(ctx, types.ImageListOptions{})
		if err != nil {
			return err
		}

		for _, s := range summaries {
			refs = append(refs, imageRef(s))
		}
	}

	if len(refs) == 0 {
		return fmt.Errorf("no images specified")
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}

		b.output.WriteLine("Scanning image %s", ref)

		if err := b.scanImage(ctx, ref); err != nil {
			return err
		}

		b.updateProgress()
	}

	b.logSummary(start)
	return nil
}

func (b *scanner) scanImage(ctx context.Context, ref string) error {
	rc, err := b.docker.ImageSave(ctx, []string{ref})
	if err != nil {
		b.reportError(ref, err)
		return nil
	}

	defer rc.Close()

	b.stats.IncImage()

	return b.scanContainer(ctx, KindTar, rc, -1, ref, 0)
}

func imageRef(s types.ImageSummary) string {
	for _, tag := range s.RepoTags {
		if tag != "<none>:<none>" {
			return tag
		}
	}

	return s.ID
}
