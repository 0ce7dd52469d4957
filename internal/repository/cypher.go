package repository

const listNodesCypher = `
MATCH (v:Vertex {context: $context})
RETURN v.id AS id, v.degree AS degree, v.region AS region
ORDER BY v.id
`

const listEdgesCypher = `
MATCH (a:Vertex {context: $context})-[l:LINK]->(b:Vertex {context: $context})
RETURN a.id AS source, b.id AS target, l.weight AS weight, l.label AS label
`

const findNodesCypher = `
MATCH (v:Vertex {context: $context})
WHERE v.id IN $ids
RETURN collect(v.id) AS found
`

const projectionExistsCypher = `
CALL gds.graph.exists($projection) YIELD exists
RETURN exists
`

const projectCypher = `
MATCH (a:Vertex {context: $context})
OPTIONAL MATCH (a)-[l:LINK]->(b:Vertex {context: $context})
WITH gds.graph.project(
  $projection,
  a,
  b,
  {relationshipProperties: l {weight: coalesce(l.weight, 1.0)}},
  {undirectedRelationshipTypes: ['*']}
) AS g
RETURN g.graphName AS graph, g.nodeCount AS nodes, g.relationshipCount AS relationships
`

const dropProjectionCypher = `
CALL gds.graph.drop($projection, false) YIELD graphName
RETURN graphName
`

const dijkstraCypher = `
MATCH (source:Vertex {context: $context, id: $origin}), (target:Vertex {context: $context, id: $destination})
CALL gds.shortestPath.dijkstra.stream($projection, {
  sourceNode: source,
  targetNode: target,
  relationshipWeightProperty: 'weight'
})
YIELD totalCost, nodeIds
RETURN totalCost AS cost, [nodeId IN nodeIds | gds.util.asNode(nodeId).id] AS path
`

const streetsCypher = `
UNWIND range(0, size($path) - 2) AS step
MATCH (a:Vertex {context: $context, id: $path[step]})-[l:LINK]-(b:Vertex {context: $context, id: $path[step + 1]})
WITH step, l
ORDER BY l.weight ASC
WITH step, collect(l.label)[0] AS label
RETURN step, label
ORDER BY step
`

const bellmanFordCypher = `
MATCH (source:Vertex {context: $context, id: $origin})
CALL gds.bellmanFord.stream($projection, {
  sourceNode: source,
  relationshipWeightProperty: 'weight'
})
YIELD targetNode, totalCost
RETURN gds.util.asNode(targetNode).id AS id, totalCost AS cost
`

const bfsCypher = `
MATCH (source:Vertex {context: $context, id: $source})
CALL gds.bfs.stream($projection, {sourceNode: source})
YIELD path
RETURN [n IN nodes(path) | n.id] AS order
`

const dfsCypher = `
MATCH (source:Vertex {context: $context, id: $source})
CALL gds.dfs.stream($projection, {sourceNode: source})
YIELD path
RETURN [n IN nodes(path) | n.id] AS order
`

const clearContextCypher = `
MATCH (v:Vertex {context: $context})
DETACH DELETE v
`

const upsertVerticesCypher = `
UNWIND $nodes AS node
MERGE (v:Vertex {context: $context, id: node.id})
SET v.degree = node.degree,
    v.region = node.region
`

const upsertLinksCypher = `
UNWIND $links AS link
MATCH (a:Vertex {context: $context, id: link.source}), (b:Vertex {context: $context, id: link.target})
CREATE (a)-[:LINK {weight: link.weight, label: link.label}]->(b)
`

const constraintCypher = `
CREATE CONSTRAINT vertex_context_id IF NOT EXISTS
FOR (v:Vertex) REQUIRE (v.context, v.id) IS UNIQUE
`
