package material

// GLSL sources for the three surface programs. Every vertex shader receives
// the same attribute layout: position at 0, normal at 1, uv at 2.

// Shared vertex shader for the backface and refraction passes
const refractVertexShaderSource = `
#version 410 core
layout (location = 0) in vec3 position;
layout (location = 1) in vec3 normal;

uniform mat4 modelMatrix;
uniform mat4 modelViewMatrix;
uniform mat4 projectionMatrix;
uniform vec3 cameraPosition;

out vec3 worldNormal;
out vec3 viewDirection;

void main() {
    vec4 worldPosition = modelMatrix * vec4(position, 1.0);
    worldNormal = normalize(modelViewMatrix * vec4(normal, 0.0)).xyz;
    viewDirection = normalize(worldPosition.xyz - cameraPosition);
    gl_Position = projectionMatrix * modelViewMatrix * vec4(position, 1.0);
}
`

// Writes the view-space normal of back faces
const backfaceFragmentShaderSource = `
#version 410 core
in vec3 worldNormal;
in vec3 viewDirection;

out vec4 FragColor;

void main() {
    FragColor = vec4(worldNormal, 1.0);
}
`

// Bends the captured environment through front and back surfaces
const refractionFragmentShaderSource = `
#version 410 core
in vec3 worldNormal;
in vec3 viewDirection;

out vec4 FragColor;

uniform sampler2D envMap;
uniform sampler2D backfaceMap;
uniform vec2 resolution;

const float ior = 1.5;
const float a = 0.33;
const vec3 reflectionColor = vec3(1.0);

float fresnel(vec3 viewDir, vec3 n) {
    return pow(1.08 + dot(viewDir, n), 10.0);
}

void main() {
    vec2 uv = gl_FragCoord.xy / resolution;

    // blend front normal with the captured back normal
    vec3 backfaceNormal = texture(backfaceMap, uv).rgb;
    vec3 n = worldNormal * (1.0 - a) - backfaceNormal * a;

    vec3 refracted = refract(viewDirection, n, 1.0 / ior);
    uv += refracted.xy;

    vec4 color = texture(envMap, uv);
    color.rgb = mix(color.rgb, reflectionColor, clamp(fresnel(viewDirection, n), 0.0, 1.0));

    FragColor = vec4(color.rgb, 1.0);
}
`

// Unlit textured quad for the background layer
const basicVertexShaderSource = `
#version 410 core
layout (location = 0) in vec3 position;
layout (location = 2) in vec2 uv;

uniform mat4 modelViewMatrix;
uniform mat4 projectionMatrix;

out vec2 TexCoord;

void main() {
    TexCoord = uv;
    gl_Position = projectionMatrix * modelViewMatrix * vec4(position, 1.0);
}
`

const basicFragmentShaderSource = `
#version 410 core
in vec2 TexCoord;
out vec4 FragColor;

uniform sampler2D map;

void main() {
    FragColor = texture(map, TexCoord);
}
`
