// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package configtest

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// CheckYAMLTags reports config fields that would not round trip through the defaults:
// fields without omitempty and yaml keys that are declared twice in one struct. Structs
// declared outside the config's own package are not inspected.
func CheckYAMLTags(config any) error {
	t := reflect.TypeOf(config)
	return checkYAMLTags(t, t.PkgPath(), map[reflect.Type]struct{}{})
}

func checkYAMLTags(t reflect.Type, pkg string, seen map[reflect.Type]struct{}) error {
	if _, ok := seen[t]; ok {
		return nil
	}
	seen[t] = struct{}{}

	switch t.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.Pointer:
		return checkYAMLTags(t.Elem(), pkg, seen)
	case reflect.Struct:
		if t.PkgPath() != pkg {
			return nil
		}
		var errs error
		names := map[string]struct{}{}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() || field.Type.Kind() == reflect.Bool {
				continue
			}

			parts := strings.Split(field.Tag.Get("yaml"), ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				if _, ok := names[parts[0]]; ok {
					errs = multierr.Append(errs, fmt.Errorf("%s/%s.%s duplicates yaml key %q", t.PkgPath(), t.Name(), field.Name, parts[0]))
				}
				names[parts[0]] = struct{}{}
			}

			if !slices.Contains(parts, "omitempty") && !slices.Contains(parts, "inline") {
				errs = multierr.Append(errs, fmt.Errorf("%s/%s.%s missing omitempty tag", t.PkgPath(), t.Name(), field.Name))
			}

			errs = multierr.Append(errs, checkYAMLTags(field.Type, pkg, seen))
		}
		return errs
	default:
		return nil
	}
}
