package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"
)

// MigrateDefaultOrgSettings creates an empty org_settings record for every
// organization that is missing one. Safe to call on every startup.
func MigrateDefaultOrgSettings(app *pocketbase.PocketBase) error {
	orgsCol, err := app.FindCollectionByNameOrId("organizations")
	if err != nil {
		return fmt.Errorf("migrate_settings: could not find organizations collection: %w", err)
	}
	settingsCol, err := app.FindCollectionByNameOrId("org_settings")
	if err != nil {
		return fmt.Errorf("migrate_settings: could not find org_settings collection: %w", err)
	}

	orgs, err := app.FindAllRecords(orgsCol)
	if err != nil {
		return fmt.Errorf("migrate_settings: could not query organizations: %w", err)
	}

	for _, org := range orgs {
		existing, err := app.FindRecordsByFilter(
			settingsCol,
			"organization = {:org}",
			"",
			1, 0,
			map[string]any{"org": org.Id},
		)
		if err != nil {
			return fmt.Errorf("migrate_settings: could not query settings for %s: %w", org.Id, err)
		}
		if len(existing) > 0 {
			continue
		}

		record := core.NewRecord(settingsCol)
		record.Set("organization", org.Id)
		record.Set("custom_columns", []any{})
		if err := app.Save(record); err != nil {
			log.Error().Err(err).Str("org", org.Id).Msg("migrate_settings: failed to create settings")
			continue
		}
	}
	return nil
}
