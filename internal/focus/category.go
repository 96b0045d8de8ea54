// ABOUTME: Category validation and selection shared by the CLI and the session service.
// ABOUTME: Only categories on the stored list can be selected or focused on.
package focus

import (
	"errors"
	"fmt"

	"github.com/harperreed/nowfocus/internal/analytics"
	"github.com/harperreed/nowfocus/internal/storage"
)

// ErrUnknownCategory is returned for a name missing from the category list.
var ErrUnknownCategory = errors.New("unknown category")

// ValidateCategory checks that name is on the category list.
func ValidateCategory(repo storage.Repository, name string) error {
	categories, err := repo.ListCategories()
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		if c == name {
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownCategory, name)
}

// SelectCategory validates name and stores it as the default category.
func SelectCategory(repo storage.Repository, tracker *analytics.Tracker, name string) error {
	if err := ValidateCategory(repo, name); err != nil {
		return err
	}
	if err := repo.SetPreference(storage.PrefSelectedCategory, name); err != nil {
		return fmt.Errorf("save selected category: %w", err)
	}

	tracker.Log(analytics.EventSettingsChanged, analytics.Params{
		analytics.ParamSettingName:  storage.PrefSelectedCategory,
		analytics.ParamSettingValue: name,
	})
	return nil
}
