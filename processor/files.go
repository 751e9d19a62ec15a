package processor

import (
	"errors"
	"os"
	"path/filepath"
)

//RemoveFiles deletes every file with the given extension directly inside folderName and returns how many
//were removed. A missing folder has nothing to remove.
func RemoveFiles(folderName string, extension string) (int, error) {
	files, err := os.ReadDir(folderName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == extension {
			if err := os.Remove(filepath.Join(folderName, file.Name())); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
