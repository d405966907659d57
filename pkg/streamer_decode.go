package pkg

import (
	"errors"
	"fmt"
	goio "io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/cesium_streamer/internal/content"
	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/ecopia-map/cesium_streamer/tools"
	"github.com/golang/glog"
)

// Decode decodes local tile content files and reports their payload. With an output folder the
// embedded glb of every file is extracted there.
func (s *Streamer) Decode(opts *tiler.StreamerDecodeOptions, w goio.Writer) error {
	files, err := s.fileFinder.GetContentFilesToProcess(opts)
	if err != nil {
		return err
	}
	tools.LogOutput("Decoding", len(files), "files")

	if opts.Output != "" {
		if err := tools.CreateDirectoryIfDoesNotExist(opts.Output); err != nil {
			return err
		}
	}

	withErrors := false
	for _, path := range files {
		if err := s.decodeFile(path, opts.Output, w); err != nil {
			glog.Errorf("%s: %v", path, err)
			fmt.Fprintf(w, "%s: %v\n", path, err)
			withErrors = true
		}
	}

	if withErrors {
		return errors.New("errors raised during execution. Check console output for details")
	}
	return nil
}

func (s *Streamer) decodeFile(path string, output string, w goio.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoded, err := content.DecodeContent(strings.ToLower(filepath.Ext(path)), data)
	if err != nil {
		return err
	}

	center := "-"
	if c := decoded.CenterOffset; c != nil {
		center = fmt.Sprintf("[%s, %s, %s]", tools.FmtDecimal(c.X, 3), tools.FmtDecimal(c.Y, 3), tools.FmtDecimal(c.Z, 3))
	}
	fmt.Fprintf(w, "%s: mesh %s, center %s, copyright %q\n",
		path, tools.FmtMegabytes(int64(len(decoded.MeshBytes))), center, strings.Join(decoded.Copyright, "; "))

	if output == "" {
		return nil
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".glb"
	return os.WriteFile(filepath.Join(output, name), decoded.MeshBytes, 0666)
}
