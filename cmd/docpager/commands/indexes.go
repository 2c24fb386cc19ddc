package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Alp4ka/docpager"
	"github.com/Alp4ka/docpager/repository"
)

func newIndexesCommand(a *app) *cobra.Command {
	var (
		collection string
		keys       []string
		unique     bool
		drop       bool
	)

	cmd := &cobra.Command{
		Use:   "indexes",
		Args:  cobra.NoArgs,
		Short: "Create a compound index matching a sort order",
		Long: `Create a compound index matching a sort order. Existing indexes are
dropped first when --drop is given or mongo.should_drop_indexes is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := indexModel(keys, unique)
			if err != nil {
				return err
			}

			client, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			opts := make([]repository.Option[bson.M], 0, 1)
			if model != nil {
				opts = append(opts, repository.WithIndexes[bson.M](*model))
			}

			repo := repository.Open[bson.M](client, collection, docpager.NewSchema("_id", docpager.TypeObjectID), opts...)

			return repo.EnsureIndexes(cmd.Context(), drop || a.cfg.Mongo.ShouldDropIndexes)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&collection, "collection", "", "collection name")
	flags.StringArrayVar(&keys, "key", nil, "index key in sort notation: field or -field")
	flags.BoolVar(&unique, "unique", false, "create a unique index")
	flags.BoolVar(&drop, "drop", false, "drop existing indexes first")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}

// indexModel builds an index over keys given in sort notation. No keys yield
// a nil model.
func indexModel(keys []string, unique bool) (*mongo.IndexModel, error) {
	if len(keys) == 0 {
		if unique {
			return nil, fmt.Errorf("--unique requires at least one --key")
		}

		return nil, nil
	}

	doc := make(bson.D, 0, len(keys))
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name, direction, err := docpager.ParseSort(key)
		if err != nil {
			return nil, err
		}

		value := 1
		if direction == docpager.DirectionDESC {
			value = -1
		}

		doc = append(doc, bson.E{Key: name, Value: value})
		names = append(names, fmt.Sprintf("%s_%d", name, value))
	}

	opts := options.Index().SetName(strings.Join(names, "_"))
	if unique {
		opts.SetUnique(true)
	}

	return &mongo.IndexModel{Keys: doc, Options: opts}, nil
}
