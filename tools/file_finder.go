package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/cesium_streamer/internal/tiler"
)

type FileFinder interface {
	GetContentFilesToProcess(opts *tiler.StreamerDecodeOptions) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

func (f *StandardFileFinder) GetContentFilesToProcess(opts *tiler.StreamerDecodeOptions) ([]string, error) {
	// If folder processing is not enabled then the file is given by -input flag, otherwise look for content files in
	// -input folder eventually excluding nested folders if Recursive flag is disabled
	if !opts.FolderProcessing {
		return []string{opts.Input}, nil
	}

	return f.getContentFilesFromInputFolder(opts)
}

func (f *StandardFileFinder) getContentFilesFromInputFolder(opts *tiler.StreamerDecodeOptions) ([]string, error) {
	var contentFiles = make([]string, 0)

	baseInfo, err := os.Stat(opts.Input)
	if err != nil {
		return nil, err
	}
	err = filepath.Walk(
		opts.Input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && !opts.Recursive && !os.SameFile(info, baseInfo) {
				return filepath.SkipDir
			} else {
				if IsContentFile(info.Name()) {
					contentFiles = append(contentFiles, path)
				}
			}
			return nil
		},
	)

	if err != nil {
		return nil, err
	}

	return contentFiles, nil
}

func IsContentFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".b3dm" || ext == ".glb"
}
