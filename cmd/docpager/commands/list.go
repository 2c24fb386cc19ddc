package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Alp4ka/docpager"
	"github.com/Alp4ka/docpager/repository"
)

type listOptions struct {
	collection string
	idType     string
	fields     []string
	sort       []string
	filter     []string
	projection []string
	limit      int
	next       string
	strategy   string
}

func newListCommand(a *app) *cobra.Command {
	var o listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "Print one page of a collection as JSON",
		Example: `  docpager list --collection articles --field views:integer \
    --field published_at:timestamp:nullable --sort -published_at --limit 20
  docpager list --collection articles --field views:integer --sort -views --next <token>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := buildSchema(o.idType, o.fields)
			if err != nil {
				return err
			}

			filter, err := parseFilter(o.filter)
			if err != nil {
				return err
			}

			client, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			repo := repository.Open[bson.M](client, o.collection, schema,
				repository.WithLimits[bson.M](a.cfg.Pagination),
			)

			page, err := repo.List(cmd.Context(), repository.ListRequest{
				PageRequest: docpager.PageRequest{
					Limit:    o.limit,
					Next:     o.next,
					Strategy: o.strategy,
					Sort:     o.sort,
				},
				Projection: o.projection,
				Filter:     filter,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(page)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.collection, "collection", "", "collection name")
	flags.StringVar(&o.idType, "id-type", docpager.TypeObjectID.String(), "type of the _id field")
	flags.StringArrayVar(&o.fields, "field", nil, "queryable field as name:type[:nullable|unique|unsortable|hidden]")
	flags.StringArrayVar(&o.sort, "sort", nil, "sort key: field, -field or 'field desc'")
	flags.StringArrayVar(&o.filter, "filter", nil, "equality filter as field=value")
	flags.StringSliceVar(&o.projection, "projection", nil, "returned fields")
	flags.IntVar(&o.limit, "limit", 0, "page size; 0 uses pagination.default_limit")
	flags.StringVar(&o.next, "next", "", "token of the requested page")
	flags.StringVar(&o.strategy, "strategy", string(docpager.StrategyCursor), "pagination strategy: cursor, relay or offset")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}
