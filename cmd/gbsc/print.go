package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func printInfo(msg string)    { infoColor.Printf("[INFO] %s\n", msg) }
func printSuccess(msg string) { successColor.Printf("[SUCCESS] %s\n", msg) }
func printWarning(msg string) { warningColor.Printf("[WARNING] %s\n", msg) }
func printError(err error)    { errorColor.Printf("[ERROR] %s\n", err.Error()) }

func printDuration(d time.Duration) {
	fmt.Printf("(%dms)\n", d.Milliseconds())
}
