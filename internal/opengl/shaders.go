package opengl

// ── Lit scene shader ─────────────────────────────────────────────────────────

// litVertSrc passes world-space position and normal to the fragment stage.
const litVertSrc = `
#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aTexCoords;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec3 FragPos;
out vec3 Normal;
out vec2 TexCoords;

void main() {
    FragPos     = vec3(model * vec4(aPos, 1.0));
    Normal      = mat3(transpose(inverse(model))) * aNormal;
    TexCoords   = aTexCoords;
    gl_Position = projection * view * vec4(FragPos, 1.0);
}
` + "\x00"

// litFragSrc is Blinn-Phong with one directional light, up to four point
// lights and the camera spotlight. Location 1 receives the colour again
// when its luminance exceeds 1.0, feeding the bloom blur.
const litFragSrc = `
#version 410 core
layout(location = 0) out vec4 FragColor;
layout(location = 1) out vec4 BrightColor;

struct Material {
    sampler2D diffuseMap;
    sampler2D specularMap;
    bool      hasDiffuseMap;
    bool      hasSpecularMap;
    vec3      diffuse;
    vec3      specular;
    float     shininess;
};

struct DirLight {
    vec3 direction;
    vec3 ambient;
    vec3 diffuse;
    vec3 specular;
};

struct PointLight {
    vec3  position;
    vec3  ambient;
    vec3  diffuse;
    vec3  specular;
    float constant;
    float linear;
    float quadratic;
};

struct SpotLight {
    vec3  position;
    vec3  direction;
    vec3  ambient;
    vec3  diffuse;
    vec3  specular;
    float constant;
    float linear;
    float quadratic;
    float cutOff;
    float outerCutOff;
};

#define MAX_POINT_LIGHTS 4

in vec3 FragPos;
in vec3 Normal;
in vec2 TexCoords;

uniform Material   material;
uniform DirLight   dirLight;
uniform PointLight pointLights[MAX_POINT_LIGHTS];
uniform int        pointLightCount;
uniform SpotLight  spotLight;
uniform vec3       viewPosition;

vec3 albedo;
vec3 specColor;

float blinn(vec3 normal, vec3 lightDir, vec3 viewDir) {
    vec3 halfwayDir = normalize(lightDir + viewDir);
    return pow(max(dot(normal, halfwayDir), 0.0), material.shininess);
}

vec3 calcDirLight(DirLight light, vec3 normal, vec3 viewDir) {
    vec3  lightDir = normalize(-light.direction);
    float diff     = max(dot(normal, lightDir), 0.0);
    float spec     = blinn(normal, lightDir, viewDir);
    return light.ambient * albedo
         + light.diffuse * diff * albedo
         + light.specular * spec * specColor;
}

vec3 calcPointLight(PointLight light, vec3 normal, vec3 viewDir) {
    vec3  lightDir    = normalize(light.position - FragPos);
    float diff        = max(dot(normal, lightDir), 0.0);
    float spec        = blinn(normal, lightDir, viewDir);
    float d           = length(light.position - FragPos);
    float attenuation = 1.0 / (light.constant + light.linear * d + light.quadratic * d * d);
    return (light.ambient * albedo
          + light.diffuse * diff * albedo
          + light.specular * spec * specColor) * attenuation;
}

vec3 calcSpotLight(SpotLight light, vec3 normal, vec3 viewDir) {
    vec3  lightDir    = normalize(light.position - FragPos);
    float diff        = max(dot(normal, lightDir), 0.0);
    float spec        = blinn(normal, lightDir, viewDir);
    float d           = length(light.position - FragPos);
    float attenuation = 1.0 / (light.constant + light.linear * d + light.quadratic * d * d);
    float theta       = dot(lightDir, normalize(-light.direction));
    float epsilon     = light.cutOff - light.outerCutOff;
    float intensity   = clamp((theta - light.outerCutOff) / epsilon, 0.0, 1.0);
    return (light.ambient * albedo
          + light.diffuse * diff * albedo
          + light.specular * spec * specColor) * attenuation * intensity;
}

void main() {
    albedo    = material.hasDiffuseMap ? texture(material.diffuseMap, TexCoords).rgb : material.diffuse;
    specColor = material.hasSpecularMap ? texture(material.specularMap, TexCoords).rgb : material.specular;

    vec3 normal  = normalize(Normal);
    vec3 viewDir = normalize(viewPosition - FragPos);

    vec3 result = calcDirLight(dirLight, normal, viewDir);
    for (int i = 0; i < pointLightCount && i < MAX_POINT_LIGHTS; i++) {
        result += calcPointLight(pointLights[i], normal, viewDir);
    }
    result += calcSpotLight(spotLight, normal, viewDir);

    FragColor = vec4(result, 1.0);
    float brightness = dot(result, vec3(0.2126, 0.7152, 0.0722));
    BrightColor = brightness > 1.0 ? vec4(result, 1.0) : vec4(0.0, 0.0, 0.0, 1.0);
}
` + "\x00"

// ── Transparent billboards ───────────────────────────────────────────────────

const billboardVertSrc = `
#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 2) in vec2 aTexCoords;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec2 TexCoords;

void main() {
    TexCoords   = aTexCoords;
    gl_Position = projection * view * model * vec4(aPos, 1.0);
}
` + "\x00"

// billboardFragSrc drops nearly transparent texels so they leave no depth.
const billboardFragSrc = `
#version 410 core
layout(location = 0) out vec4 FragColor;
layout(location = 1) out vec4 BrightColor;

in vec2 TexCoords;

uniform sampler2D texture1;

void main() {
    vec4 texColor = texture(texture1, TexCoords);
    if (texColor.a < 0.1)
        discard;
    FragColor   = texColor;
    BrightColor = vec4(0.0, 0.0, 0.0, texColor.a);
}
` + "\x00"

// ── Cubemap skybox ───────────────────────────────────────────────────────────

// skyboxVertSrc forces depth to the far plane via the xyww trick.
const skyboxVertSrc = `
#version 410 core
layout(location = 0) in vec3 aPos;

uniform mat4 view;
uniform mat4 projection;

out vec3 TexCoords;

void main() {
    TexCoords   = aPos;
    vec4 pos    = projection * view * vec4(aPos, 1.0);
    gl_Position = pos.xyww;
}
` + "\x00"

const skyboxFragSrc = `
#version 410 core
layout(location = 0) out vec4 FragColor;
layout(location = 1) out vec4 BrightColor;

in vec3 TexCoords;

uniform samplerCube skybox;

void main() {
    FragColor   = texture(skybox, TexCoords);
    BrightColor = vec4(0.0, 0.0, 0.0, 1.0);
}
` + "\x00"

// ── Post-processing ──────────────────────────────────────────────────────────

// fullscreenVertSrc draws one oversized triangle from gl_VertexID (no VBO).
const fullscreenVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// blurFragSrc is one axis of the separable 9-tap Gaussian.
const blurFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 FragColor;

uniform sampler2D image;
uniform bool      horizontal;
uniform float     weight[5];

void main() {
    vec2 texel  = 1.0 / vec2(textureSize(image, 0));
    vec2 stride = horizontal ? vec2(texel.x, 0.0) : vec2(0.0, texel.y);
    vec3 result = texture(image, fragUV).rgb * weight[0];
    for (int i = 1; i < 5; ++i) {
        result += texture(image, fragUV + stride * float(i)).rgb * weight[i];
        result += texture(image, fragUV - stride * float(i)).rgb * weight[i];
    }
    FragColor = vec4(result, 1.0);
}
` + "\x00"

// compositeFragSrc adds bloom, applies exposure tone mapping, then gamma.
const compositeFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 FragColor;

uniform sampler2D hdrBuffer;
uniform sampler2D bloomBlur;
uniform bool      bloom;
uniform float     exposure;
uniform float     gamma;

void main() {
    vec3 hdr = texture(hdrBuffer, fragUV).rgb;
    if (bloom)
        hdr += texture(bloomBlur, fragUV).rgb;
    vec3 mapped = vec3(1.0) - exp(-hdr * exposure);
    FragColor   = vec4(pow(mapped, vec3(1.0 / gamma)), 1.0);
}
` + "\x00"

// ── Overlay panel ────────────────────────────────────────────────────────────

// overlayVertSrc spans rect (x0, y0, x1, y1 in NDC) with a 4-vertex strip.
// Image row 0 maps to the top edge.
const overlayVertSrc = `
#version 410 core
uniform vec4 rect;
out vec2 fragUV;
void main() {
    const vec2 corners[4] = vec2[4](
        vec2(0.0, 0.0),
        vec2(1.0, 0.0),
        vec2(0.0, 1.0),
        vec2(1.0, 1.0)
    );
    vec2 c      = corners[gl_VertexID];
    gl_Position = vec4(mix(rect.x, rect.z, c.x), mix(rect.y, rect.w, c.y), 0.0, 1.0);
    fragUV      = vec2(c.x, 1.0 - c.y);
}
` + "\x00"

const overlayFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 FragColor;

uniform sampler2D panel;

void main() {
    FragColor = texture(panel, fragUV);
}
` + "\x00"
