package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Match    bool
	Resolve  bool
	Assoc    bool
	Complete bool
	Store    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Match = boolEnv("YLS_DEBUG_MATCH")
	d.Resolve = boolEnv("YLS_DEBUG_RESOLVE")
	d.Assoc = boolEnv("YLS_DEBUG_ASSOC")
	d.Complete = boolEnv("YLS_DEBUG_COMPLETE")
	d.Store = boolEnv("YLS_DEBUG_STORE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Match() bool {
	return d.Match
}
func Resolve() bool {
	return d.Resolve
}
func Assoc() bool {
	return d.Assoc
}
func Complete() bool {
	return d.Complete
}
func Store() bool {
	return d.Store
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
