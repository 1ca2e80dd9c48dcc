package sim

import (
	"strconv"
	"strings"
)

// NameMustBeValid panics if the name does not follow the naming convention.
// A name is a series of dot-separated elements. Each element must be
// non-empty, capitalized CamelCase, and may carry square-bracket indices
// (e.g., "Retimer.WPipeline[2]").
func NameMustBeValid(name string) {
	for _, elem := range strings.Split(name, ".") {
		elemMustBeValid(name, elem)
	}
}

func elemMustBeValid(name, elem string) {
	base := elem
	if i := strings.IndexByte(elem, '['); i >= 0 {
		base = elem[:i]
		indexMustBeValid(name, elem[i:])
	}

	if base == "" {
		panic("name " + name + " is not valid: element must not be empty")
	}

	for _, c := range []string{"_", "\"", "'", "-", "]"} {
		if strings.Contains(base, c) {
			panic("name " + name + " is not valid: element must not contain " + c)
		}
	}

	if base[0] < 'A' || base[0] > 'Z' {
		panic("name " + name +
			" is not valid: element must start with a capital letter")
	}
}

func indexMustBeValid(name, index string) {
	for len(index) > 0 {
		if index[0] != '[' {
			panic("name " + name + " is not valid: bracket must match")
		}

		end := strings.IndexByte(index, ']')
		if end < 0 {
			panic("name " + name + " is not valid: bracket must match")
		}

		if _, err := strconv.Atoi(index[1:end]); err != nil {
			panic("name " + name + " is not valid: index must be an integer")
		}

		index = index[end+1:]
	}
}

// BuildName builds a name from a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds a name from a parent name, an element name, and
// an index.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}
