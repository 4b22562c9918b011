// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package exec

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type Executable struct {
	bin  string
	args []string
}

// NewExecutable accepts an input argument bin which is the path or executable
// name to be ultimately executed.  The optional face is a struct whose fields
// carry `flag:"-x"` annotation tags and are serialized into command-line
// arguments ahead of args.
func NewExecutable(bin string, face interface{}, args ...string) (*Executable, error) {
	if len(bin) == 0 {
		return nil, fmt.Errorf("binary argument cannot be empty")
	}

	e := &Executable{bin: bin}

	if face != nil {
		ifaceArgs, err := ParseInterfaceArgs(face)
		if err != nil {
			return nil, err
		}

		e.args = append(e.args, ifaceArgs...)
	}

	e.args = append(e.args, args...)

	return e, nil
}

// Bin returns the program to be executed.
func (e *Executable) Bin() string {
	return e.bin
}

// Args returns the arguments passed to the program.
func (e *Executable) Args() []string {
	return e.args
}

// Argv returns the program followed by its arguments.
func (e *Executable) Argv() []string {
	return append([]string{e.bin}, e.args...)
}

type flag struct {
	name        string
	omitvalueif string
	joined      bool
}

func parseFlag(tag reflect.StructTag) (*flag, error) {
	raw, ok := tag.Lookup("flag")
	if !ok {
		return nil, fmt.Errorf("no flag tag")
	}

	parts := strings.Split(raw, ",")
	f := &flag{name: parts[0]}

	for _, part := range parts[1:] {
		switch {
		case strings.HasPrefix(part, "omitvalueif"):
			omit := strings.SplitN(part, "=", 2)
			if len(omit) == 1 {
				return nil, fmt.Errorf("omitvalueif requires value")
			}
			f.omitvalueif = omit[1]

		case part == "joined":
			f.joined = true
		}
	}

	return f, nil
}

func (f *flag) render(value string) []string {
	if value == f.omitvalueif {
		return []string{f.name}
	}

	if f.joined {
		return []string{f.name + value}
	}

	return []string{f.name, value}
}

// ParseInterfaceArgs returns the array of arguments detected from a struct
// with `flag` tag annotations.  Untagged embedded structs are walked
// recursively.  A `joined` tag option renders the flag and its value as a
// single argument, e.g. `-j8`.
func ParseInterfaceArgs(face interface{}, args ...string) ([]string, error) {
	v := reflect.ValueOf(face)
	if v.Kind() == reflect.Ptr {
		return nil, fmt.Errorf("cannot derive interface arguments from pointer: passed by reference")
	}

	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot derive interface arguments from %s", v.Kind())
	}

	return parseStruct(v, args), nil
}

func parseStruct(v reflect.Value, args []string) []string {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)

		f, err := parseFlag(t.Field(i).Tag)
		if err != nil {
			if field.Kind() == reflect.Struct && t.Field(i).Anonymous {
				args = parseStruct(field, args)
			}

			continue
		}

		if len(f.name) == 0 {
			continue
		}

		switch field.Kind() {
		case reflect.Ptr:
			if field.IsNil() {
				continue
			}

			args = append(args, f.render(scalar(field.Elem()))...)

		case reflect.Bool:
			if field.Bool() {
				args = append(args, f.name)
			}

		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if field.Int() == 0 {
				continue
			}

			args = append(args, f.render(strconv.FormatInt(field.Int(), 10))...)

		case reflect.String:
			if field.Len() == 0 {
				continue
			}

			args = append(args, f.render(field.String())...)

		case reflect.Slice:
			for j := 0; j < field.Len(); j++ {
				str := scalar(field.Index(j))
				if len(str) == 0 {
					continue
				}

				args = append(args, f.render(str)...)
			}

		default:
			if !field.CanInterface() {
				continue
			}

			value, ok := field.Interface().(fmt.Stringer)
			if !ok {
				continue
			}

			if str := value.String(); len(str) > 0 {
				args = append(args, f.render(str)...)
			}
		}
	}

	return args
}

// scalar renders a single value, preferring fmt.Stringer when the value is
// accessible.
func scalar(v reflect.Value) string {
	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return ""
	}
}
