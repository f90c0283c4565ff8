package frames

import (
	"archive/zip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// compress packs the source directory into dest.zip.
func compress(source, dest string) (err error) {
	f, err := os.Create(dest + ".zip")
	if err != nil {
		return err
	}
	writer := zip.NewWriter(f)
	defer func() {
		err = errors.Join(err, writer.Close(), f.Close())
	}()

	return filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) (er error) {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Method = zip.Deflate
		header.Name, err = filepath.Rel(filepath.Dir(source), path)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(header.Name)
		if d.IsDir() {
			header.Name += "/"
		}

		headerWriter, err := writer.CreateHeader(header)
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { er = errors.Join(er, src.Close()) }()

		_, err = io.Copy(headerWriter, src)
		return err
	})
}
