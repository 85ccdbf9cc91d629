package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zeptools/pledgedesk/record"
)

// recordFile is the YAML form of a record. Image paths are relative to the file.
//
//	candidateName: علي حسن
//	observerName: محمد جاسم
//	images:
//	  nationalCardFront: scans/front.jpg
type recordFile struct {
	record.ObserverRecord `yaml:",inline"`

	Images map[string]string `yaml:"images"`
}

func loadRecordFile(ctx context.Context, path string) (*record.ObserverRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf recordFile
	if err = yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rec := rf.ObserverRecord
	base := filepath.Dir(path)
	for name, imgPath := range rf.Images {
		slot, err := record.ParseSlot(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if !filepath.IsAbs(imgPath) {
			imgPath = filepath.Join(base, imgPath)
		}
		img, err := loadImageFile(ctx, imgPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, name, err)
		}
		if err = rec.SetImage(slot, img); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

func loadImageFile(ctx context.Context, path string) (*record.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return record.LoadImage(ctx, f)
}
