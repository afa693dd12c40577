// Command mrtmosaic assembles a set of MODIS sinusoidal/integerized-
// sinusoidal tiles into one mosaic, per SPEC_FULL.md §6.1.
//
// CLI dispatch follows the teacher's (pspoerri-geotiff2pmtiles) single
// flat command, re-expressed with spf13/cobra per the short single-dash
// flag surface this tool's history demands (DOMAIN STACK). Logging follows
// the teacher's settings-summary-then-progress shape but through
// sirupsen/logrus rather than fmt.Printf.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/usgs-eros/mrtmosaic/internal/compat"
	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/executor"
	"github.com/usgs-eros/mrtmosaic/internal/filelist"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
	"github.com/usgs-eros/mrtmosaic/internal/planner"
	"github.com/usgs-eros/mrtmosaic/internal/rasterio"
	"github.com/usgs-eros/mrtmosaic/internal/sizeest"
	"github.com/usgs-eros/mrtmosaic/internal/tilesutil"
)

// tmpHdrFilename is the fixed output path for a -h header-only run,
// matching OutputHdrMosaic's hardcoded "TmpHdr.hdr" (mosaic.c:238-250) —
// the header goes there regardless of what -o names, since -h never writes
// pixel data to begin with.
const tmpHdrFilename = "TmpHdr.hdr"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		inputList  string
		outputPath string
		bandStr    string
		tilesOnly  bool
		headerOnly bool
		logPath    string
	)

	cmd := &cobra.Command{
		Use:   "mrtmosaic",
		Short: "Assemble MODIS sinusoidal tiles into a mosaic",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(logPath)
			v := viper.New()
			v.AutomaticEnv()

			if inputList == "" {
				return mosaicerr.New(mosaicerr.Usage, "-i <filelist> is required")
			}
			if !headerOnly && outputPath == "" && !tilesOnly {
				return mosaicerr.New(mosaicerr.Usage, "-o <output> is required unless -t or -h is given")
			}

			selection, err := parseBandString(bandStr)
			if err != nil {
				return err
			}

			return run(log, v, inputList, outputPath, selection, tilesOnly, headerOnly)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&inputList, "input-list", "i", "", "input file list")
	flags.StringVarP(&outputPath, "output", "o", "", "output mosaic file")
	flags.StringVarP(&bandStr, "subset", "s", "", "spectral subset, e.g. \"101\"")
	flags.BoolVarP(&tilesOnly, "tiles", "t", false, "write tile.txt and exit")
	flags.BoolVarP(&headerOnly, "header", "h", false, "write the output header only and exit")
	flags.StringVarP(&logPath, "log", "g", "", "log file (default: stderr)")

	return cmd
}

// newLogger builds the run's logrus.Logger, writing to logPath when given
// (per §6.1's -g flag) and to stderr otherwise.
func newLogger(logPath string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if logPath == "" {
		log.SetOutput(os.Stderr)
		return log
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.WithError(err).Warn("could not open log file, falling back to stderr")
		return log
	}
	log.SetOutput(f)
	return log
}

// parseBandString validates and parses the -s bandstr eagerly, per §7's
// "eager -s validation" local-recovery exception: any character other than
// '0'/'1'/space is a Usage error, caught before any I/O happens. A blank
// bandstr means "all bands selected" and is reported as a nil selection.
func parseBandString(s string) ([]bool, error) {
	if s == "" {
		return nil, nil
	}
	var out []bool
	for _, r := range s {
		switch r {
		case '0':
			out = append(out, false)
		case '1':
			out = append(out, true)
		case ' ', '\t':
			continue
		default:
			return nil, mosaicerr.New(mosaicerr.Usage, fmt.Sprintf("invalid character %q in -s subset string", r))
		}
	}
	return out, nil
}

func run(log *logrus.Logger, v *viper.Viper, inputList, outputPath string, selection []bool, tilesOnly, headerOnly bool) error {
	lookup := filelist.EnvLookup(func(name string) (string, bool) {
		if v.IsSet(name) {
			return v.GetString(name), true
		}
		return filelist.OSEnvLookup(name)
	})

	paths, err := filelist.ParseFile(inputList, lookup, func(msg string) { log.Warn(msg) })
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return mosaicerr.New(mosaicerr.Usage, "input file list contains no filenames")
	}

	tileFiles := make([]tilesutil.TileFile, len(paths))
	descriptors := make([]*descriptor.TileDescriptor, len(paths))
	inputs := make([]executor.InputSource, len(paths))
	inputFileType := fileTypeForPath(paths[0])

	for i, p := range paths {
		ft := fileTypeForPath(p)
		tileFiles[i] = tilesutil.TileFile{Path: p, FileType: ft}

		var sidecar *rasterio.Sidecar
		if ft == descriptor.RawBinary {
			sidecar, err = rasterio.ReadSidecarFile(sidecarPath(p))
			if err != nil {
				return err
			}
		}

		r, err := rasterio.OpenReader(p, ft, sidecar)
		if err != nil {
			return err
		}
		descriptors[i] = r.Descriptor()
		if cerr := r.Close(); cerr != nil {
			return cerr
		}

		inputs[i] = executor.InputSource{Path: p, Sidecar: sidecar}
	}

	if tilesOnly {
		log.Info("writing tile.txt")
		return tilesutil.DetermineTiles(tileFiles, "tile.txt")
	}

	if err := compat.Check(descriptors); err != nil {
		return err
	}

	result, err := planner.Plan(descriptors, outputPath)
	if err != nil {
		return err
	}
	applySelection(result.Mosaic, selection)

	if headerOnly {
		log.Info("writing header only")
		return tilesutil.WriteHeader(result.Mosaic, tmpHdrFilename)
	}

	outputFileType := fileTypeForPath(outputPath)
	if outputFileType != inputFileType {
		return mosaicerr.New(mosaicerr.Usage,
			fmt.Sprintf("output file type (%v) must match input file type (%v)", outputFileType, inputFileType))
	}
	if outputFileType == descriptor.HDFEOS {
		warning, err := sizeest.Check(result.Mosaic)
		if err != nil {
			return err
		}
		if warning != "" {
			log.Warn(warning)
		}
	}

	log.WithFields(logrus.Fields{
		"inputs": len(paths),
		"h":      result.Grid.H,
		"v":      result.Grid.V,
		"output": outputPath,
	}).Info("starting mosaic")

	err = executor.Run(executor.Options{
		Inputs:           inputs,
		InputFileType:    inputFileType,
		Grid:             result.Grid,
		Mosaic:           result.Mosaic,
		OutputPath:       outputPath,
		OutputFileType:   outputFileType,
		Log:              log,
		SourceAttributes: descriptors[0].Attributes,
	})
	if err != nil {
		return err
	}

	log.Info("mosaic complete")
	return nil
}

// applySelection marks every band selected when selection is nil (the -s
// flag was omitted) or applies the parsed bit string positionally, per
// §6.1's "Defaults to all bands selected" rule.
func applySelection(m *descriptor.MosaicDescriptor, selection []bool) {
	for i := range m.Bands {
		if selection == nil {
			m.Bands[i].Selected = true
			continue
		}
		m.Bands[i].Selected = i < len(selection) && selection[i]
	}
}

// fileTypeForPath classifies a path as HDF-EOS or raw-binary by extension,
// per §6.5's raw-binary naming convention and the HDF-EOS container's usual
// .hdf suffix.
func fileTypeForPath(path string) descriptor.FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hdf", ".hdfeos":
		return descriptor.HDFEOS
	default:
		return descriptor.RawBinary
	}
}

// sidecarPath derives a raw-binary tile's header path by replacing its
// extension with ".hdr", the convention ReadHeaderFileMosaic's companion
// writer (output_hdr_mosaic.c) follows for its own output.
func sidecarPath(dataPath string) string {
	ext := filepath.Ext(dataPath)
	return strings.TrimSuffix(dataPath, ext) + ".hdr"
}
