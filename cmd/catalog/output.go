package main

import (
	"fmt"
	"io"

	"github.com/asakaida/unicatalog/internal/entities"
	"github.com/asakaida/unicatalog/internal/handlers"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var printer = protojson.MarshalOptions{Multiline: true, Indent: "  "}

func printStruct(w io.Writer, s *structpb.Struct) error {
	data, err := printer.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printEntity(w io.Writer, e *entities.Entity) error {
	s, err := handlers.EntityToStruct(e)
	if err != nil {
		return err
	}
	return printStruct(w, s)
}

func printEntities(w io.Writer, list []*entities.Entity) error {
	s, err := handlers.EntitiesToStruct(list)
	if err != nil {
		return err
	}
	return printStruct(w, s)
}

func printAttributes(w io.Writer, list []*entities.Attribute) error {
	s, err := handlers.AttributesToStruct(list)
	if err != nil {
		return err
	}
	return printStruct(w, s)
}
