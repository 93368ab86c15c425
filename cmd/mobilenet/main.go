// Package main provides the MobileNetV2 backbone CLI.
package main

import (
	"fmt"
	"log"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	log.SetFlags(0)
	log.SetPrefix("mobilenet: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "summary":
		err = runSummary(args)
	case "export":
		err = runExport(args)
	case "demo":
		err = runDemo(args)
	case "version":
		fmt.Printf("MobileNetV2 backbone %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Println("MobileNetV2 feature-extraction backbone")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  summary    Print the layer table of a backbone")
	fmt.Println("  export     Write initialized weights as SafeTensors")
	fmt.Println("  demo       Run an image folder through the backbone and save a preview grid")
	fmt.Println("  version    Show version")
}
