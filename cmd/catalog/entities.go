package main

import (
	"fmt"
	"strings"

	"github.com/asakaida/unicatalog/internal/entities"
	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var (
		name     string
		parentID int64
		inactive bool
		attrs    []string
		jsonDoc  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an entity with its initial attributes",
		Example: `  catalog create --name "Intro to Databases" --attr course_code=CS101 --attr credits:number=6
  catalog create --json '{"name": "Algorithms", "attributes": {"credits": {"value": 6, "type": "number"}}}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := &entities.EntityInput{}
			if err := decodeJSONFlag(jsonDoc, input); err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				input.Name = name
			}
			if cmd.Flags().Changed("parent") {
				input.ParentID = &parentID
			}
			if inactive {
				active := false
				input.IsActive = &active
			}

			flagAttrs, err := parseAttrFlags(attrs)
			if err != nil {
				return err
			}
			input.Attributes = mergeAttrs(input.Attributes, flagAttrs)

			id, err := catalog.CreateEntity(cmd.Context(), input)
			if err != nil {
				return err
			}

			entity, err := catalog.GetEntityByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printEntity(cmd.OutOrStdout(), entity)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Entity name")
	cmd.Flags().Int64Var(&parentID, "parent", 0, "ID of the grouping entity")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the entity inactive")
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "Attribute as name[:type]=value (repeatable)")
	cmd.Flags().StringVar(&jsonDoc, "json", "", "Entity as a JSON document")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			entity, err := catalog.GetEntityByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printEntity(cmd.OutOrStdout(), entity)
		},
	}
}

func newListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := catalog.GetAllEntities(cmd.Context(), all)
			if err != nil {
				return err
			}
			return printEntities(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive entities")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var (
		name     string
		active   bool
		parentID int64
		noParent bool
		attrs    []string
		jsonDoc  string
	)

	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Update entity fields and attributes",
		Example: `  catalog update 42 --active=false --attr credits:number=5 --attr syllabus=null`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			patch := &entities.EntityPatch{}
			if err := decodeJSONFlag(jsonDoc, patch); err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("active") {
				patch.IsActive = &active
			}
			if cmd.Flags().Changed("parent") {
				patch.ParentID = &parentID
			}
			if noParent {
				patch.ClearParent = true
			}

			flagAttrs, err := parseAttrFlags(attrs)
			if err != nil {
				return err
			}
			patch.Attributes = mergeAttrs(patch.Attributes, flagAttrs)

			entity, err := catalog.UpdateEntity(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			return printEntity(cmd.OutOrStdout(), entity)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New entity name")
	cmd.Flags().BoolVar(&active, "active", true, "Set the active flag")
	cmd.Flags().Int64Var(&parentID, "parent", 0, "Move under this grouping entity")
	cmd.Flags().BoolVar(&noParent, "no-parent", false, "Detach from the grouping entity")
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "Attribute as name[:type]=value, value null clears (repeatable)")
	cmd.Flags().StringVar(&jsonDoc, "json", "", "Patch as a JSON document")
	cmd.MarkFlagsMutuallyExclusive("parent", "no-parent")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entity and all of its values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := catalog.DeleteEntity(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "deleted entity %d\n", id)
			return nil
		},
	}
}

func newSetCmd() *cobra.Command {
	var (
		dataType   string
		clearValue bool
	)

	cmd := &cobra.Command{
		Use:   "set <id> <attribute> [value]",
		Short: "Set or clear one attribute value",
		Example: `  catalog set 42 credits 6 --type number
  catalog set 42 syllabus --clear`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var value interface{}
			switch {
			case clearValue && len(args) == 3:
				return fmt.Errorf("--clear takes no value")
			case !clearValue && len(args) == 2:
				return fmt.Errorf("value is required unless --clear is given")
			case !clearValue:
				value = args[2]
			}

			if err := catalog.SetAttributeValue(cmd.Context(), id, args[1], value, entities.DataType(dataType)); err != nil {
				return err
			}

			entity, err := catalog.GetEntityByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printEntity(cmd.OutOrStdout(), entity)
		},
	}

	cmd.Flags().StringVarP(&dataType, "type", "t", "", "Data type ("+dataTypeList()+"), default string")
	cmd.Flags().BoolVar(&clearValue, "clear", false, "Remove the attribute value")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var attribute string

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Find active entities by name or string/text value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			list, err := catalog.SearchEntities(cmd.Context(), term, attribute)
			if err != nil {
				return err
			}
			return printEntities(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().StringVarP(&attribute, "attribute", "a", "", "Only match values of this attribute")
	return cmd
}

func newFilterCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "filter <expression>",
		Short:   "List entities matching a CEL expression",
		Example: `  catalog filter 'entity.credits >= 5 && entity.department == "CS"'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := catalog.FilterEntities(cmd.Context(), args[0], all)
			if err != nil {
				return err
			}
			return printEntities(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive entities")
	return cmd
}

func newChildrenCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "children <id>",
		Short: "List the entities grouped under an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			list, err := catalog.ListChildren(cmd.Context(), id, all)
			if err != nil {
				return err
			}
			return printEntities(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive entities")
	return cmd
}

func dataTypeList() string {
	names := make([]string, 0, len(entities.DataTypes))
	for _, t := range entities.DataTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
