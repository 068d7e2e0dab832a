package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/urfave/cli/v2"

	"github.com/amoeba/libac-go/internal/dat"
	"github.com/amoeba/libac-go/internal/icon"
	"github.com/amoeba/libac-go/internal/texture"
)

var (
	datFileFlag = &cli.StringFlag{
		Name:     "dat-file",
		Usage:    "archive source: path, http(s):// URL, s3://bucket/key or azblob://container/blob",
		Required: true,
	}
	sourceConfigFlag = &cli.StringFlag{
		Name:  "source-config",
		Usage: "YAML file with remote-source settings",
	}
	outputDirFlag = &cli.StringFlag{
		Name:  "output-dir",
		Usage: "directory extracted files are written to",
		Value: ".",
	}
	scaleFlag = &cli.IntFlag{
		Name:  "scale",
		Usage: "integer upscale factor for decoded images",
		Value: 1,
	}
)

var headerCommand = &cli.Command{
	Name:  "header",
	Usage: "print the archive header",
	Flags: []cli.Flag{datFileFlag, sourceConfigFlag},
	Action: func(c *cli.Context) error {
		r, closer, err := openSource(c.Context, c.String("dat-file"), c.String("source-config"))
		if err != nil {
			return err
		}
		defer closer.Close()

		db, err := dat.Open(c.Context, r)
		if err != nil {
			return err
		}
		h := db.Header()
		fmt.Printf("kind            %s\n", h.Kind())
		fmt.Printf("block size      %d\n", h.BlockSize)
		fmt.Printf("total size      %d\n", h.FileSize)
		fmt.Printf("btree root      %#x\n", h.BTreeRoot)
		fmt.Printf("free blocks     %d (head %#x tail %#x)\n", h.FreeCount, h.FreeHead, h.FreeTail)
		fmt.Printf("engine version  %d\n", h.EnginePackVersion)
		fmt.Printf("game version    %d\n", h.GamePackVersion)
		fmt.Printf("minor version   %d\n", h.VersionMinor)
		fmt.Printf("uses lru        %v\n", h.UseLRU)
		return nil
	},
}

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "enumerate directory entries",
	Flags: []cli.Flag{
		datFileFlag, sourceConfigFlag,
		&cli.BoolFlag{Name: "recursive", Usage: "descend the whole directory tree", Value: true},
		&cli.BoolFlag{Name: "digest", Usage: "read each entry and print its xxhash64"},
	},
	Action: func(c *cli.Context) error {
		r, closer, err := openSource(c.Context, c.String("dat-file"), c.String("source-config"))
		if err != nil {
			return err
		}
		defer closer.Close()

		db, err := dat.Open(c.Context, r)
		if err != nil {
			return err
		}
		entries, err := db.List(c.Context, c.Bool("recursive"))
		if err != nil {
			return err
		}
		for _, e := range entries {
			if c.Bool("digest") {
				buf, err := db.ReadEntry(c.Context, e)
				if err != nil {
					return fmt.Errorf("object %#08x: %w", e.ObjectID, err)
				}
				fmt.Printf("%08X\t%s\t%d\t%016x\n", e.ObjectID, e.Kind(), e.FileSize, xxhash.Sum64(buf))
			} else {
				fmt.Printf("%08X\t%s\t%d\n", e.ObjectID, e.Kind(), e.FileSize)
			}
		}
		slog.Info("listed entries", "count", len(entries))
		return nil
	},
}

var extractCommand = &cli.Command{
	Name:      "extract",
	Usage:     "extract one entry by object id (decimal or 0x hex)",
	ArgsUsage: "<object_id>",
	Flags:     []cli.Flag{datFileFlag, sourceConfigFlag, outputDirFlag, scaleFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("want exactly one object id argument")
		}
		id, err := parseObjectID(c.Args().First())
		if err != nil {
			return err
		}

		r, closer, err := openSource(c.Context, c.String("dat-file"), c.String("source-config"))
		if err != nil {
			return err
		}
		defer closer.Close()

		db, err := dat.Open(c.Context, r)
		if err != nil {
			return err
		}
		e, err := db.Find(c.Context, id)
		if err != nil {
			return err
		}
		path, err := extractEntry(c, db, e)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var extractAllCommand = &cli.Command{
	Name:  "extract-all",
	Usage: "extract every texture entry",
	Flags: []cli.Flag{
		datFileFlag, sourceConfigFlag, outputDirFlag, scaleFlag,
		&cli.StringFlag{
			Name:  "match",
			Usage: "glob over the 8-digit hex object id, e.g. '0600*'",
		},
	},
	Action: func(c *cli.Context) error {
		r, closer, err := openSource(c.Context, c.String("dat-file"), c.String("source-config"))
		if err != nil {
			return err
		}
		defer closer.Close()

		db, err := dat.Open(c.Context, r)
		if err != nil {
			return err
		}
		entries, err := db.List(c.Context, true)
		if err != nil {
			return err
		}

		pattern := c.String("match")
		n := 0
		for _, e := range entries {
			if e.Kind() != dat.KindTexture {
				continue
			}
			if pattern != "" && !doublestar.MatchUnvalidated(pattern, fmt.Sprintf("%08x", e.ObjectID)) {
				continue
			}
			path, err := extractEntry(c, db, e)
			if err != nil {
				slog.Warn("skipping entry", "object", fmt.Sprintf("%08X", e.ObjectID), "err", err)
				continue
			}
			slog.Info("extracted", "object", fmt.Sprintf("%08X", e.ObjectID), "path", path)
			n++
		}
		fmt.Printf("extracted %d of %d entries\n", n, len(entries))
		return nil
	},
}

// extractEntry writes one entry under --output-dir: textures become
// PNGs, anything else is written raw.
func extractEntry(c *cli.Context, db *dat.Database, e dat.Entry) (string, error) {
	buf, err := db.ReadEntry(c.Context, e)
	if err != nil {
		return "", err
	}
	dir := c.String("output-dir")
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return "", err
	}

	if e.Kind() != dat.KindTexture {
		path := filepath.Join(dir, fmt.Sprintf("%08X.bin", e.ObjectID))
		return path, os.WriteFile(path, buf, 0o666)
	}

	_, payload, err := dat.DecodeFrame(dat.KindTexture, buf)
	if err != nil {
		return "", err
	}
	t, err := texture.Decode(payload)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%08X.png", e.ObjectID))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := t.WritePNG(f, c.Int("scale")); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

var iconCommand = &cli.Command{
	Name:  "icon",
	Usage: "compose an icon from texture layers",
	Flags: []cli.Flag{
		datFileFlag, sourceConfigFlag, outputDirFlag, scaleFlag,
		&cli.StringFlag{Name: "base", Usage: "base layer object id", Required: true},
		&cli.StringFlag{Name: "underlay", Usage: "underlay object id"},
		&cli.StringFlag{Name: "overlay", Usage: "overlay object id"},
		&cli.StringFlag{Name: "overlay2", Usage: "second overlay object id"},
		&cli.StringFlag{Name: "effect", Usage: "effect layer object id"},
	},
	Action: func(c *cli.Context) error {
		r, closer, err := openSource(c.Context, c.String("dat-file"), c.String("source-config"))
		if err != nil {
			return err
		}
		defer closer.Close()

		db, err := dat.Open(c.Context, r)
		if err != nil {
			return err
		}

		fetch := func(flag string) (*texture.Texture, error) {
			s := c.String(flag)
			if s == "" {
				return nil, nil
			}
			id, err := parseObjectID(s)
			if err != nil {
				return nil, err
			}
			e, err := db.Find(c.Context, id)
			if err != nil {
				return nil, err
			}
			buf, err := db.ReadEntry(c.Context, e)
			if err != nil {
				return nil, err
			}
			_, payload, err := dat.DecodeFrame(dat.KindTexture, buf)
			if err != nil {
				return nil, err
			}
			return texture.Decode(payload)
		}

		ic := icon.Icon{Scale: c.Int("scale")}
		if ic.Base, err = fetch("base"); err != nil {
			return err
		}
		if ic.Underlay, err = fetch("underlay"); err != nil {
			return err
		}
		if ic.Overlay, err = fetch("overlay"); err != nil {
			return err
		}
		if ic.Overlay2, err = fetch("overlay2"); err != nil {
			return err
		}
		if ic.Effect, err = fetch("effect"); err != nil {
			return err
		}

		dir := c.String("output-dir")
		if err := os.MkdirAll(dir, 0o777); err != nil {
			return err
		}
		baseID, _ := parseObjectID(c.String("base"))
		path := filepath.Join(dir, fmt.Sprintf("icon-%08X.png", baseID))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := ic.WritePNG(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}
