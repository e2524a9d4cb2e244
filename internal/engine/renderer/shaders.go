package renderer

// Two directional lights and an ambient term. Back faces flip the normal and
// take their own colour.
const litVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uViewProj;
uniform mat4 uModel;

out vec3 vNormal;

void main() {
	vNormal = mat3(uModel) * aNormal;
	gl_Position = uViewProj * uModel * vec4(aPos, 1.0);
}
`

const litFragmentShader = `
#version 410 core

in vec3 vNormal;

uniform vec3 uFront;
uniform vec3 uBack;

out vec4 FragColor;

const vec3 keyDir  = normalize(vec3(1.0, 3.0, 1.0));
const vec3 fillDir = normalize(vec3(-2.0, 3.0, -1.0));

void main() {
	vec3 n = normalize(vNormal);
	vec3 base = uFront;
	if (!gl_FrontFacing) {
		n = -n;
		base = uBack;
	}
	float light = 0.5
		+ 0.6 * max(dot(n, keyDir), 0.0)
		+ 0.2 * max(dot(n, fillDir), 0.0);
	FragColor = vec4(min(base * light, vec3(1.0)), 1.0);
}
`

const flatVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;
uniform mat4 uModel;

void main() {
	gl_Position = uViewProj * uModel * vec4(aPos, 1.0);
}
`

const flatFragmentShader = `
#version 410 core

uniform vec3 uColor;

out vec4 FragColor;

void main() {
	FragColor = vec4(uColor, 1.0);
}
`
