package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/aleksaelezovic/noema/pkg/noema"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: noema-demo <command>")
		fmt.Println("Commands:")
		fmt.Println("  demo     - Run a demo with sample data: interning, reasoning, shapes, templates")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "demo":
		if err := runDemo(); err != nil {
			log.Fatalf("%+v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func runDemo() error {
	fmt.Println("=== Noema Semantic Store Demo ===")
	fmt.Println()

	store, err := noema.CreateStore(noema.Config{
		MaxSubjects:              1024,
		MaxPredicates:            256,
		MaxObjects:               1024,
		PostingListHashThreshold: 32,
		InferenceIterationCap:    32,
		TemplateCacheCapacity:    64,
	})
	if err != nil {
		return errors.Wrap(err, "creating store")
	}
	defer store.Close()

	typePred := store.TypePredicate()
	car, err := store.Intern([]byte("Car"))
	if err != nil {
		return errors.Wrap(err, "interning Car")
	}
	vehicle, err := store.Intern([]byte("Vehicle"))
	if err != nil {
		return errors.Wrap(err, "interning Vehicle")
	}
	tesla, err := store.Intern([]byte("Tesla"))
	if err != nil {
		return errors.Wrap(err, "interning Tesla")
	}

	fmt.Println("Inserting sample data...")
	if err := store.AddTriple(tesla, typePred, car); err != nil {
		return errors.Wrap(err, "adding (Tesla, rdf:type, Car)")
	}
	fmt.Println("  + Tesla rdf:type Car")

	if err := store.DeclareSubclass(car, vehicle); err != nil {
		return errors.Wrap(err, "declaring Car subclass of Vehicle")
	}
	fmt.Println("  + declared Car subclassOf Vehicle")

	knows, err := store.Intern([]byte("knows"))
	if err != nil {
		return errors.Wrap(err, "interning knows")
	}
	alice, err := store.Intern([]byte("alice"))
	if err != nil {
		return errors.Wrap(err, "interning alice")
	}
	bob, err := store.Intern([]byte("bob"))
	if err != nil {
		return errors.Wrap(err, "interning bob")
	}
	carol, err := store.Intern([]byte("carol"))
	if err != nil {
		return errors.Wrap(err, "interning carol")
	}
	for _, pair := range [][2]uint32{{alice, bob}, {bob, carol}} {
		if err := store.AddTriple(pair[0], knows, pair[1]); err != nil {
			return errors.Wrap(err, "adding knows triple")
		}
	}
	if err := store.DeclareTransitive(knows); err != nil {
		return errors.Wrap(err, "declaring knows transitive")
	}
	fmt.Println("  + alice knows bob, bob knows carol; declared knows transitive")

	fmt.Println()
	fmt.Println("Materializing reasoning closure...")
	if err := store.Materialize(); err != nil {
		return errors.Wrap(err, "materializing")
	}

	fmt.Printf("  check_class(tesla, Vehicle) = %v\n", store.CheckClass(tesla, vehicle))
	fmt.Printf("  ask(alice, knows, carol)    = %v\n", store.Ask(alice, knows, carol))

	fmt.Println()
	fmt.Println("=== Shape Validation ===")
	name, err := store.Intern([]byte("name"))
	if err != nil {
		return errors.Wrap(err, "interning name")
	}
	email, err := store.Intern([]byte("email"))
	if err != nil {
		return errors.Wrap(err, "interning email")
	}
	person, err := store.Intern([]byte("Person"))
	if err != nil {
		return errors.Wrap(err, "interning Person")
	}
	aliceName, err := store.Intern([]byte("Alice"))
	if err != nil {
		return errors.Wrap(err, "interning Alice")
	}
	if err := store.AddTriple(alice, typePred, person); err != nil {
		return errors.Wrap(err, "typing alice as Person")
	}
	if err := store.AddTriple(alice, name, aliceName); err != nil {
		return errors.Wrap(err, "adding alice's name")
	}

	store.DefineShape("PersonShape", person, []noema.Constraint{
		{Kind: noema.KindMinCount, Property: name, Count: 1},
		{Kind: noema.KindMaxCount, Property: name, Count: 1},
		{Kind: noema.KindHasProperty, Property: email},
	})
	result, err := store.ValidateShape(alice, "PersonShape")
	if err != nil {
		return errors.Wrap(err, "validating PersonShape")
	}
	fmt.Printf("  validate_shape(alice, PersonShape) pass=%v violations=%d\n", result.Pass, len(result.Violations))
	for _, v := range result.Violations {
		fmt.Printf("    - %s on property %d: %s\n", v.Kind, v.Property, v.Details)
	}

	fmt.Println()
	fmt.Println("=== Template Rendering ===")
	out, err := store.Render(`Hello {{ user | capitalize }}{% if admin %} (admin){% endif %}!`,
		noema.Context{"user": noema.StringValue("alice"), "admin": noema.BoolValue(true)})
	if err != nil {
		return errors.Wrap(err, "rendering template")
	}
	fmt.Printf("  %s\n", out)

	fmt.Println()
	fmt.Println("=== Demo Complete ===")
	return nil
}
