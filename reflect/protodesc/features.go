// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"github.com/protocore/protocore/encoding/wire"
	"github.com/protocore/protocore/internal/fieldnum"
	"github.com/protocore/protocore/reflect/protoreflect"
)

// Values of the google.protobuf.FeatureSet enumerations.
const (
	presenceExplicit       = 1
	presenceImplicit       = 2
	presenceLegacyRequired = 3

	enumOpen   = 1
	enumClosed = 2

	repeatedPacked   = 1
	repeatedExpanded = 2

	utf8Verify = 2
	utf8None   = 3

	messageLengthPrefixed = 1
	messageDelimited      = 2

	jsonAllow            = 1
	jsonLegacyBestEffort = 2
)

// features is a resolved google.protobuf.FeatureSet.
//
// Every descriptor resolves its features from its own options layered on
// top of its parent's resolved set, ending at the edition defaults of the
// file. A zero field in a decoded FeatureSet means "inherit".
type features struct {
	fieldPresence         int32
	enumType              int32
	repeatedFieldEncoding int32
	utf8Validation        int32
	messageEncoding       int32
	jsonFormat            int32
}

// editionDefaults returns the features in effect for files of edition e.
// Proto2 and proto3 files resolve as their legacy editions.
func editionDefaults(e Edition) features {
	switch e {
	case EditionProto2:
		return features{
			fieldPresence:         presenceExplicit,
			enumType:              enumClosed,
			repeatedFieldEncoding: repeatedExpanded,
			utf8Validation:        utf8None,
			messageEncoding:       messageLengthPrefixed,
			jsonFormat:            jsonLegacyBestEffort,
		}
	case EditionProto3:
		return features{
			fieldPresence:         presenceImplicit,
			enumType:              enumOpen,
			repeatedFieldEncoding: repeatedPacked,
			utf8Validation:        utf8Verify,
			messageEncoding:       messageLengthPrefixed,
			jsonFormat:            jsonAllow,
		}
	default:
		return features{
			fieldPresence:         presenceExplicit,
			enumType:              enumOpen,
			repeatedFieldEncoding: repeatedPacked,
			utf8Validation:        utf8Verify,
			messageEncoding:       messageLengthPrefixed,
			jsonFormat:            jsonAllow,
		}
	}
}

// resolve layers the FeatureSet found in the encoded options message on top
// of fs. The features field number differs per options message.
func (fs features) resolve(options []byte, num wire.Number) (features, error) {
	var sets [][]byte
	err := rangeFields(options, func(fld field) {
		if fld.num == num && fld.typ == wire.BytesType {
			sets = append(sets, fld.b)
		}
	})
	if err != nil {
		return fs, err
	}
	for _, b := range sets {
		err := rangeFields(b, func(fld field) {
			if fld.typ != wire.VarintType || fld.v == 0 {
				return
			}
			v := int32(fld.v)
			switch fld.num {
			case fieldnum.FeatureSet_FieldPresence:
				fs.fieldPresence = v
			case fieldnum.FeatureSet_EnumType:
				fs.enumType = v
			case fieldnum.FeatureSet_RepeatedFieldEncoding:
				fs.repeatedFieldEncoding = v
			case fieldnum.FeatureSet_Utf8Validation:
				fs.utf8Validation = v
			case fieldnum.FeatureSet_MessageEncoding:
				fs.messageEncoding = v
			case fieldnum.FeatureSet_JsonFormat:
				fs.jsonFormat = v
			}
		})
		if err != nil {
			return fs, err
		}
	}
	return fs, nil
}

// RequiresUTF8Validation reports whether string fields must hold valid UTF-8.
func (f *Field) RequiresUTF8Validation() bool {
	return f.features.utf8Validation == utf8Verify
}

// IsDelimited reports whether a message field is encoded as a group.
func (f *Field) IsDelimited() bool {
	return f.kind == protoreflect.GroupKind
}
