package prompt

import "testing"

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
	}{
		{
			name:     "single placeholder",
			template: "Write copy for a {{component_type}} section.",
			vars:     map[string]string{"component_type": "hero"},
			want:     "Write copy for a hero section.",
		},
		{
			name:     "inner whitespace allowed",
			template: "{{ user_prompt }} done",
			vars:     map[string]string{"user_prompt": "Launch sale"},
			want:     "Launch sale done",
		},
		{
			name:     "missing key becomes empty string",
			template: "before {{unknown}} after",
			vars:     map[string]string{},
			want:     "before  after",
		},
		{
			name:     "repeated placeholder",
			template: "{{x}} and {{x}}",
			vars:     map[string]string{"x": "twice"},
			want:     "twice and twice",
		},
		{
			name:     "malformed placeholders left literal",
			template: "{{not closed }, {single}, {{bad-char}}, {{}}",
			vars:     map[string]string{"single": "nope"},
			want:     "{{not closed }, {single}, {{bad-char}}, {{}}",
		},
		{
			name:     "no placeholders is byte identical",
			template: "plain text with {braces} and }} stray tokens",
			vars:     map[string]string{"braces": "x"},
			want:     "plain text with {braces} and }} stray tokens",
		},
		{
			name:     "multiple variables",
			template: "component={{component_type}} prompt={{user_prompt}} props={{current_props}}",
			vars: map[string]string{
				"component_type": "hero",
				"user_prompt":    "Launch sale",
				"current_props":  `{"title":"Old"}`,
			},
			want: `component=hero prompt=Launch sale props={"title":"Old"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Interpolate(tt.template, tt.vars); got != tt.want {
				t.Errorf("Interpolate() = %q, want %q", got, tt.want)
			}
		})
	}
}
