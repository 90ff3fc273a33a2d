package remote

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateTables creates all remote tables in dependency order, plus the
// constraints and notify triggers the core relies on.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*userRow)(nil),
		(*raceRow)(nil),
		(*predictionRow)(nil),
	}

	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", m, err)
		}
	}

	constraints := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'predictions_race_fk') THEN ALTER TABLE predictions ADD CONSTRAINT predictions_race_fk FOREIGN KEY (race_id) REFERENCES races (id) ON DELETE CASCADE; END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'predictions_user_fk') THEN ALTER TABLE predictions ADD CONSTRAINT predictions_user_fk FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE; END IF; END $$`,
	}
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("constraint: %w", err)
		}
	}

	// Row-change triggers feed the LISTEN/NOTIFY stream consumed by
	// PGListener.
	triggers := []string{
		`CREATE OR REPLACE FUNCTION notify_races() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('races', COALESCE(NEW.id, OLD.id));
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS races_notify ON races`,
		`CREATE TRIGGER races_notify AFTER INSERT OR UPDATE OR DELETE ON races FOR EACH ROW EXECUTE FUNCTION notify_races()`,
		`CREATE OR REPLACE FUNCTION notify_predictions() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('predictions', COALESCE(NEW.race_id, OLD.race_id));
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS predictions_notify ON predictions`,
		`CREATE TRIGGER predictions_notify AFTER INSERT OR UPDATE OR DELETE ON predictions FOR EACH ROW EXECUTE FUNCTION notify_predictions()`,
	}
	for _, stmt := range triggers {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("trigger: %w", err)
		}
	}

	return nil
}
