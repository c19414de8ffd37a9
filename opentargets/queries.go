package opentargets

const searchQuery = `
query Search($queryString: String!, $entityNames: [String!]) {
  search(queryString: $queryString, entityNames: $entityNames, page: {index: 0, size: 5}) {
    hits {
      id
      name
      entity
      score
    }
  }
}`

const diseaseTargetsQuery = `
query DiseaseTargets($efoId: String!, $size: Int!) {
  disease(efoId: $efoId) {
    id
    name
    associatedTargets(page: {index: 0, size: $size}) {
      count
      rows {
        score
        target {
          id
          approvedSymbol
        }
      }
    }
  }
}`

const targetDrugsQuery = `
query TargetDrugs($ensemblId: String!, $size: Int!) {
  target(ensemblId: $ensemblId) {
    id
    approvedSymbol
    knownDrugs(size: $size) {
      count
      rows {
        drugId
        prefName
        phase
      }
    }
  }
}`

const drugQuery = `
query DrugInfo($chemblId: String!) {
  drug(chemblId: $chemblId) {
    id
    name
    description
    maximumClinicalTrialPhase
    mechanismsOfAction {
      rows {
        mechanismOfAction
        actionType
        targetName
        targets {
          id
          approvedSymbol
        }
      }
    }
  }
}`

const tractabilityQuery = `
query TargetTractability($ensemblId: String!) {
  target(ensemblId: $ensemblId) {
    id
    approvedSymbol
    tractability {
      modality
      value
      label
    }
  }
}`

const chemicalProbesQuery = `
query TargetChemicalProbes($ensemblId: String!) {
  target(ensemblId: $ensemblId) {
    id
    approvedSymbol
    chemicalProbes {
      id
      control
      drugId
      isHighQuality
      mechanismOfAction
      origin
      probesDrugsScore
      probeMinerScore
      scoreInCells
      scoreInOrganisms
      targetFromSourceId
      urls { niceName url }
    }
  }
}`

const prioritisationQuery = `
query TargetPrioritisation($ensemblId: String!) {
  target(ensemblId: $ensemblId) {
    id
    approvedSymbol
    prioritisation {
      items {
        key
        value
      }
    }
  }
}`

const safetyQuery = `
query TargetSafety($ensemblId: String!) {
  target(ensemblId: $ensemblId) {
    id
    approvedSymbol
    safetyLiabilities {
      event
      eventId
      biosamples {
        cellFormat
        cellLabel
        tissueLabel
        tissueId
      }
      effects {
        dosing
        direction
      }
      studies {
        name
        type
        description
      }
      datasource
      literature
      url
    }
  }
}`
