package commands

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Search matches snapshot entries against a pattern. Patterns are tried
// as globs first and fall back to regular expressions, matching the "/"
// command syntax: /PATTERN.
func Search(ctx *Ctx, args []string) int {
	pattern := strings.TrimPrefix(args[0], "/")
	if pattern == "" && len(args) > 1 {
		pattern = args[1]
	}
	if pattern == "" {
		ctx.S.Errorf("/: missing search pattern")
		return 1
	}

	if ctx.S.Snapshot == nil {
		if err := ctx.S.Refresh(); err != nil {
			ctx.S.Errorf("/: %v", err)
			return 1
		}
	}

	match := matcherFor(pattern, ctx.S.CaseSensPath)
	if match == nil {
		ctx.S.Errorf("/%s: invalid pattern", pattern)
		return 1
	}

	found := 0
	for i, e := range ctx.S.Snapshot.Entries {
		if match(e.Name) {
			fmt.Fprintf(ctx.S.Stdout, "%d %s\n", i+1, e.Name)
			found++
		}
	}
	if found == 0 {
		ctx.S.Errorf("/%s: no matches found", pattern)
		return 1
	}
	return 0
}

// matcherFor compiles pattern as a glob when it carries wildcards, as a
// regular expression otherwise, and nil when neither works.
func matcherFor(pattern string, caseSens bool) func(string) bool {
	p := pattern
	if !caseSens {
		p = strings.ToLower(p)
	}

	if strings.ContainsAny(pattern, "*?[") {
		if g, err := glob.Compile(p); err == nil {
			return func(name string) bool {
				if !caseSens {
					name = strings.ToLower(name)
				}
				return g.Match(name)
			}
		}
	}

	if !caseSens {
		p = "(?i)" + pattern
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil
	}
	return re.MatchString
}

func init() {
	addCmd(Search, "/")
}
