package ir

import "fmt"

// DwarfTag identifies the DWARF tag of a debug info node.
type DwarfTag uint16

// DWARF tags that appear in the debug info emitted by the paired compiler.
const (
	TagArrayType       DwarfTag = 0x01
	TagClassType       DwarfTag = 0x02
	TagEnumerationType DwarfTag = 0x04
	TagFormalParameter DwarfTag = 0x05
	TagLexicalBlock    DwarfTag = 0x0b
	TagMember          DwarfTag = 0x0d
	TagPointerType     DwarfTag = 0x0f
	TagReferenceType   DwarfTag = 0x10
	TagCompileUnit     DwarfTag = 0x11
	TagStructureType   DwarfTag = 0x13
	TagSubroutineType  DwarfTag = 0x15
	TagTypedef         DwarfTag = 0x16
	TagUnionType       DwarfTag = 0x17
	TagVariant         DwarfTag = 0x19
	TagBaseType        DwarfTag = 0x24
	TagConstType       DwarfTag = 0x26
	TagSubprogram      DwarfTag = 0x2e
	TagVariantPart     DwarfTag = 0x33
	TagVariable        DwarfTag = 0x34
	TagVolatileType    DwarfTag = 0x35
	TagRestrictType    DwarfTag = 0x37
	TagNamespace       DwarfTag = 0x39
)

var dwarfTagNames = map[DwarfTag]string{
	TagArrayType:       "DW_TAG_array_type",
	TagClassType:       "DW_TAG_class_type",
	TagEnumerationType: "DW_TAG_enumeration_type",
	TagFormalParameter: "DW_TAG_formal_parameter",
	TagLexicalBlock:    "DW_TAG_lexical_block",
	TagMember:          "DW_TAG_member",
	TagPointerType:     "DW_TAG_pointer_type",
	TagReferenceType:   "DW_TAG_reference_type",
	TagCompileUnit:     "DW_TAG_compile_unit",
	TagStructureType:   "DW_TAG_structure_type",
	TagSubroutineType:  "DW_TAG_subroutine_type",
	TagTypedef:         "DW_TAG_typedef",
	TagUnionType:       "DW_TAG_union_type",
	TagVariant:         "DW_TAG_variant",
	TagBaseType:        "DW_TAG_base_type",
	TagConstType:       "DW_TAG_const_type",
	TagSubprogram:      "DW_TAG_subprogram",
	TagVariantPart:     "DW_TAG_variant_part",
	TagVariable:        "DW_TAG_variable",
	TagVolatileType:    "DW_TAG_volatile_type",
	TagRestrictType:    "DW_TAG_restrict_type",
	TagNamespace:       "DW_TAG_namespace",
}

func (t DwarfTag) String() string {
	if name, ok := dwarfTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DW_TAG_unknown(%#x)", uint16(t))
}
