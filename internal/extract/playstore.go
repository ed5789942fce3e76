package extract

import (
	"fmt"
	"iter"

	"github.com/dkarpov/takeout-ingest/internal/decode"
	"github.com/dkarpov/takeout-ingest/internal/model"
)

// extractAppInstalls handles the app store install-history export.
func extractAppInstalls(path string, doc any) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		records, ok := doc.([]any)
		if !ok {
			yield(errOutcome(&DocumentError{Path: path, Reason: "App installs: top level item isn't a list"}))
			return
		}
		for _, rec := range records {
			ev, err := buildAppInstall(rec)
			if err != nil {
				if !yield(errOutcome(err)) {
					return
				}
				continue
			}
			if !yield(eventOutcome(ev)) {
				return
			}
		}
	}
}

func buildAppInstall(rec any) (model.AppInstall, error) {
	m, ok := rec.(map[string]any)
	if !ok {
		return model.AppInstall{}, fmt.Errorf("install record: expected object, got %T", rec)
	}
	install, err := reqMap(m, "install")
	if err != nil {
		return model.AppInstall{}, err
	}
	docInfo, err := reqMap(install, "doc")
	if err != nil {
		return model.AppInstall{}, err
	}
	title, err := reqString(docInfo, "title")
	if err != nil {
		return model.AppInstall{}, err
	}
	attrs, err := reqMap(install, "deviceAttribute")
	if err != nil {
		return model.AppInstall{}, err
	}
	installedAt, err := reqString(install, "firstInstallationTime")
	if err != nil {
		return model.AppInstall{}, err
	}
	ts, err := decode.UTCDate(installedAt)
	if err != nil {
		return model.AppInstall{}, err
	}
	return model.AppInstall{
		Title:      title,
		DeviceName: optString(attrs, "deviceDisplayName"),
		Time:       ts,
	}, nil
}
