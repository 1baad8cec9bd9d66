package codegen

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const aggregatorTemplate = `#[macro_use]
extern crate gdnative;
{{ if .Modules }}
{{ range .Modules }}mod {{ .NormalizedName }};
{{ end }}
fn init(handle: gdnative::nativescript::InitHandle) {
{{- range .Modules }}
	handle.{{ $.Register }}::<{{ .NormalizedName }}::{{ .DisplayName }}>();
{{- end }}
}
{{ else }}
fn init(handle: gdnative::nativescript::InitHandle) {
}
{{ end }}
godot_init!(init);
`

const moduleStubTemplate = `use gdnative::api::{{ .Base }};
use gdnative::nativescript::user_data;

#[derive(NativeClass)]
#[inherit({{ .Base }})]
#[user_data(user_data::LocalCellData<{{ .Name }}>)]
pub struct {{ .Name }};

#[gdnative::methods]
impl {{ .Name }} {
	fn new(_owner: &{{ .Base }}) -> Self {
		{{ .Name }}
	}

	#[export]
	fn _ready(&self, _owner: &{{ .Base }}) {
		godot_print!({{ quote .Name }});
	}
}
`

const libraryManifestTemplate = `[entry]

{{ range .Entries }}{{ .Platform }}={{ quote .Resource }}
{{ end }}
[dependencies]

{{ range .Entries }}{{ .Platform }}=[  ]
{{ end }}
[general]

singleton=false
load_once=true
symbol_prefix="godot_"
reloadable=true
`

const resourceDescriptorTemplate = `[gd_resource type="NativeScript" load_steps=2 format=2]

[ext_resource path={{ quote .ManifestResource }} type="GDNativeLibrary" id=1]

[resource]

resource_name = {{ quote .ClassName }}
class_name = {{ quote .ClassName }}
library = ExtResource( 1 )
`

const pluginConfigTemplate = `[plugin]
name = {{ quote .Name }}
description = {{ quote .Description }}
author = {{ quote .Author }}
version = {{ quote .Version }}
script = {{ quote .Script }}
`

var templates = template.Must(
	template.New("codegen").Funcs(sprig.TxtFuncMap()).Parse(""),
)

func init() {
	for name, body := range map[string]string{
		"aggregator":          aggregatorTemplate,
		"module_stub":         moduleStubTemplate,
		"library_manifest":    libraryManifestTemplate,
		"resource_descriptor": resourceDescriptorTemplate,
		"plugin_config":       pluginConfigTemplate,
	} {
		template.Must(templates.New(name).Parse(body))
	}
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
